package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ppiankov/ciscope/internal/model"
	"github.com/ppiankov/ciscope/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	profileName            string
	profileIndication      string
	profileStage           string
	profileTarget          string
	profileDifferentiators string
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the program profile",
	Long: `Manage the program profile ciscope compares competitor signals against.

The profile is a single slot: setting it replaces the previous one. Stance
scoring is meaningless without a profile, so 'ciscope analyze' requires one.`,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set (replace) the program profile",
	Long: `Set the program profile. Replaces any existing profile.

Example:
  ciscope profile set --name AZ-CLDN18-ADC --target CLDN18.2 \
    --indication "Gastric cancer, 2L+" --stage "Phase 2" \
    --differentiators "First-in-class CLDN18.2 ADC, ORR 45%"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := model.ProgramProfile{
			ProgramName:     profileName,
			Indication:      profileIndication,
			Stage:           profileStage,
			Target:          profileTarget,
			Differentiators: profileDifferentiators,
		}

		s, err := profileStore()
		if err != nil {
			return err
		}
		if err := s.Save(profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		fmt.Printf("✓ Saved profile: %s\n", profile.ProgramName)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current program profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := profileStore()
		if err != nil {
			return err
		}

		profile, err := s.Load()
		if errors.Is(err, store.ErrNoProfile) {
			return fmt.Errorf("no profile set (run 'ciscope profile set' first)")
		}
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		out, err := yaml.Marshal(profile)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

var profileClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the program profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := profileStore()
		if err != nil {
			return err
		}
		if err := s.Clear(); err != nil {
			return fmt.Errorf("clear profile: %w", err)
		}
		fmt.Println("✓ Profile cleared")
		return nil
	},
}

func profileStore() (*store.ProfileStore, error) {
	dir, err := ciscopeDir()
	if err != nil {
		return nil, err
	}
	return store.NewProfileStore(filepath.Join(dir, "profile.yaml")), nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileClearCmd)

	profileSetCmd.Flags().StringVar(&profileName, "name", "", "program name (required)")
	profileSetCmd.Flags().StringVar(&profileIndication, "indication", "", "indication, e.g. \"Gastric cancer, 2L+\"")
	profileSetCmd.Flags().StringVar(&profileStage, "stage", "", "development stage, e.g. \"Phase 2\"")
	profileSetCmd.Flags().StringVar(&profileTarget, "target", "", "molecular target, e.g. CLDN18.2")
	profileSetCmd.Flags().StringVar(&profileDifferentiators, "differentiators", "", "key differentiators")
	_ = profileSetCmd.MarkFlagRequired("name")
}

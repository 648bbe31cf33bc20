package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator tooling for the patient portal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a config file")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	return rootCmd
}

// openDatabase loads configuration and connects to the portal database
func openDatabase(cmd *cobra.Command) (*config.Config, *database.DB, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.NewWithOutput(cfg.LogLevel, cmd.ErrOrStderr())
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the portal tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.CreateSchema(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d schema statement(s).\n", len(database.Statements()))
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Manage doctor accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a doctor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor := &types.Doctor{}
			doctor.DoctorID, _ = cmd.Flags().GetString("doctor-id")
			doctor.Name, _ = cmd.Flags().GetString("name")
			doctor.Email, _ = cmd.Flags().GetString("email")
			doctor.Specialization, _ = cmd.Flags().GetString("specialization")

			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("AURICARE_DOCTOR_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password or AURICARE_DOCTOR_PASSWORD is required")
			}

			cfg, db, log, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			service := newAuthService(cfg, db, log)
			created, err := service.ProvisionDoctor(cmd.Context(), doctor, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created doctor %s (%s) with id %s\n", created.DoctorID, created.Name, created.ID)
			return nil
		},
	}
	createCmd.Flags().String("doctor-id", "", "Login identifier, e.g. DOC001")
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().String("email", "", "Contact email")
	createCmd.Flags().String("specialization", "", "Specialization shown to patients")
	createCmd.Flags().String("password", "", "Initial password (or set AURICARE_DOCTOR_PASSWORD)")
	createCmd.MarkFlagRequired("doctor-id")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("email")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List doctor accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, log, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			doctors, err := newAuthService(cfg, db, log).Doctors(cmd.Context())
			if err != nil {
				return err
			}
			return printDoctors(cmd, doctors)
		},
	}

	cmd.AddCommand(createCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

// newAuthService builds an auth service for offline account management.
// Sessions are never issued here so an in-memory store is enough.
func newAuthService(cfg *config.Config, db *database.DB, log *logger.Logger) *auth.Service {
	return auth.NewService(
		&cfg.JWT,
		auth.NewUserRepository(db),
		auth.NewDoctorRepository(db),
		auth.NewMemorySessionStore(),
		monitoring.NewMetricsCollector("portalctl"),
		log,
	)
}

func printDoctors(cmd *cobra.Command, doctors []*types.Doctor) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOCTOR ID\tNAME\tEMAIL\tSPECIALIZATION")
	for _, d := range doctors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.DoctorID, d.Name, d.Email, d.Specialization)
	}
	return w.Flush()
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding accounts by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := args[0]
			if len(password) < auth.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
			}

			hash, err := auth.NewPasswordManager().HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/bootstrap"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Crea el usuario administrador inicial",
	Long: `Crea un usuario con rol admin. Si el email ya existe no hace nada.

La contraseña se lee de --password o de la variable ADMIN_PASSWORD.`,
	Example: `  ADMIN_PASSWORD=secreto123 billingctl seed-admin --email admin@flota.co`,
	RunE:    runSeedAdmin,
}

func init() {
	rootCmd.AddCommand(seedAdminCmd)
	seedAdminCmd.Flags().String("email", "admin@flota.local", "Email del administrador")
	seedAdminCmd.Flags().String("name", "Administrador", "Nombre visible")
	seedAdminCmd.Flags().String("password", "", "Contraseña (mínimo 8 caracteres)")
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = envOr("ADMIN_PASSWORD", "")
	}
	if len(password) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}

	ctx := cmd.Context()
	app, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.Deps.AuthUC.RegisterUser(ctx, dto.CreateUserRequest{
		Email: email, Password: password, Name: name, Role: entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		log.Info().Str("email", email).Msg("el administrador ya existe")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("administrador creado")
	return nil
}

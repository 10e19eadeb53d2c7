package main

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/user"
	emailsvc "github.com/pcacademy/backend/services/email"
	"github.com/pcacademy/backend/storage/docstore/postgres"
)

var readPasswordFunc = term.ReadPassword // mockable

var addUserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "Register a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		if name == "" || email == "" {
			return errors.New("both --name and --email are required")
		}

		fmt.Print("Enter password: ")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			return errors.New("password must not be empty")
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		svc := user.NewService(user.NewRepository(postgres.NewStore(db)), emailsvc.NewConsoleService())
		usr, err := svc.Create(cmd.Context(), user.NewUser{
			Name:            core.CleanString(name),
			Email:           core.CleanString(email, true /* lower */),
			Password:        string(pwd),
			PasswordConfirm: string(pwd),
		})
		if err != nil {
			return err
		}
		logger.Printf("created user %s (%s)", usr.Name, usr.Email)
		return nil
	},
}

func init() {
	addUserCmd.Flags().String("name", "", "The user's display name")
	addUserCmd.Flags().String("email", "", "The user's email address")
}

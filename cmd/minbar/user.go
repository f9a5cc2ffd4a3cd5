package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/minbar/pkg/auth"
)

var userPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage operator accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Register an operator",
	Long:  `Register an operator account. The password is read from stdin when --password is empty.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password := userPassword
		if password == "" {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				fatal("Error reading password", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		accounts := openAccounts()
		defer accounts.Close()

		if _, err := accounts.Register(cmd.Context(), args[0], password); err != nil {
			fatal("Error registering user", err)
		}
		fmt.Printf("registered %s\n", auth.NormalizeEmail(args[0]))
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operator accounts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accounts := openAccounts()
		defer accounts.Close()

		users, err := accounts.Users(cmd.Context())
		if err != nil {
			fatal("Error listing users", err)
		}
		for _, u := range users {
			fmt.Printf("%d\t%s\t%s\n", u.ID, u.Email, u.CreatedAt.Format("2006-01-02"))
		}
	},
}

func openAccounts() *auth.Service {
	accounts, err := auth.Open(auth.Config{
		DBPath:   cfg.Auth.DBPath,
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: cfg.GetTokenTTL(),
		Logger:   slog.Default(),
	})
	if err != nil {
		fatal("Error opening accounts", err)
	}
	return accounts
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd)
	userAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "Password (default: read from stdin)")
}

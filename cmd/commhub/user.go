package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/web/db"
	"github.com/solris/commhub/internal/web/repository"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runUserList,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete [username]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var (
	userUsername string
	userPassword string
	userFullName string
)

func init() {
	userCreateCmd.Flags().StringVar(&userUsername, "username", "", "Username")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (will prompt if not provided)")
	userCreateCmd.Flags().StringVar(&userFullName, "name", "", "Display name")
	userCreateCmd.MarkFlagRequired("username")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)

	userCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/commhub/config.yaml", "Path to configuration file")
}

func openDatabase() (*db.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	// Prompt for password if not provided
	password := userPassword
	if password == "" {
		fmt.Print("Enter password: ")
		pwBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		pwBytes2, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()

		if password != string(pwBytes2) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if len(password) < 10 {
		return fmt.Errorf("password must be at least 10 characters")
	}

	users := repository.NewUserRepository(database.DB)
	if _, err := users.Create(userUsername, password, userFullName); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("user %s already exists", userUsername)
		}
		return err
	}

	fmt.Printf("User %s created successfully\n", userUsername)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := database.Query("SELECT id, username, name, created_at FROM users ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Printf("%-36s  %-24s  %-20s  %s\n", "ID", "Username", "Name", "Created")
	fmt.Println(strings.Repeat("-", 96))

	for rows.Next() {
		var id, username, createdAt string
		var name *string
		if err := rows.Scan(&id, &username, &name, &createdAt); err != nil {
			return err
		}
		nameStr := ""
		if name != nil {
			nameStr = *name
		}
		fmt.Printf("%-36s  %-24s  %-20s  %s\n", id, username, nameStr, createdAt)
	}

	return rows.Err()
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	// Confirm deletion
	fmt.Printf("Are you sure you want to delete user %s? [y/N]: ", username)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response != "y" && response != "yes" {
		fmt.Println("Cancelled")
		return nil
	}

	result, err := database.Exec("DELETE FROM users WHERE username = ?", username)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("user %s not found", username)
	}

	fmt.Printf("User %s deleted\n", username)
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/yigit/registrar/internal/app/models"
	appServices "github.com/yigit/registrar/internal/app/services"
)

var (
	userInput      appServices.CreateUserInput
	userRole       string
	enrollmentYear int
	studentMajor   string

	loginEmail    string
	loginPassword string
)

type createdUser struct {
	User    *models.User           `json:"user"`
	Profile *models.StudentProfile `json:"studentProfile,omitempty"`
}

var userCreateCmd = &cobra.Command{
	Use:   "user:create",
	Short: "Create a student or admin account",
	Long: `Create an account. Students also get a profile with a generated student number.

Examples:
  registrar user:create --email ada@example.edu --password 'Passw0rd' \
    --first-name Ada --last-name Lovelace --role student --enrollment-year 2024 --major "Computer Science"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := models.ParseRole(userRole)
		if err != nil {
			return err
		}
		var major models.Major
		if role == models.RoleStudent {
			if major, err = models.ParseMajor(studentMajor); err != nil {
				return err
			}
		}

		input := userInput
		input.Role = role
		user, err := deps.Services.Identity.CreateUser(cmd.Context(), input)
		if err != nil {
			return err
		}

		result := createdUser{User: user}
		if role == models.RoleStudent {
			result.Profile, err = deps.Services.Identity.CreateStudentProfile(cmd.Context(), user.ID, enrollmentYear, major)
			if err != nil {
				return err
			}
		}
		return printJSON(result)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials and print a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := deps.Services.Identity.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		return printJSON(session)
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userInput.Email, "email", "", "account email")
	userCreateCmd.Flags().StringVar(&userInput.Password, "password", "", "account password")
	userCreateCmd.Flags().StringVar(&userInput.FirstName, "first-name", "", "first name")
	userCreateCmd.Flags().StringVar(&userInput.LastName, "last-name", "", "last name")
	userCreateCmd.Flags().StringVar(&userRole, "role", models.RoleStudent.String(), "student or admin")
	userCreateCmd.Flags().IntVar(&enrollmentYear, "enrollment-year", 0, "year the student enrolled")
	userCreateCmd.Flags().StringVar(&studentMajor, "major", "", "declared major")
	for _, name := range []string{"email", "password", "first-name", "last-name"} {
		_ = userCreateCmd.MarkFlagRequired(name)
	}

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(userCreateCmd, loginCmd)
}

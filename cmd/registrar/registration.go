package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yigit/registrar/internal/app/models"
)

var (
	regStudent    string
	regOffering   string
	regID         string
	regGrade      string
	regNoWaitlist bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a student in an offering",
	Long: `Register a student in an offering. The student must have completed every
prerequisite in an earlier term. When the offering is full the student is
waitlisted, or rejected with --no-waitlist.

Examples:
  registrar register --student <uuid> --offering <uuid>
  registrar register --student <uuid> --offering <uuid> --no-waitlist`,
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, err := parseID("student", regStudent)
		if err != nil {
			return err
		}
		offeringID, err := parseID("offering", regOffering)
		if err != nil {
			return err
		}

		register := deps.Services.Registrations.Register
		if regNoWaitlist {
			register = deps.Services.Registrations.RegisterOrReject
		}
		reg, err := register(cmd.Context(), studentID, offeringID)
		if err != nil {
			return err
		}
		return printJSON(reg)
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop a registered or waitlisted registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("registration", regID)
		if err != nil {
			return err
		}
		reg, err := deps.Services.Registrations.Drop(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(reg)
	},
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Assign a final letter grade to a registration",
	Long: `Assign a final letter grade (A, B, C, D or F). Only registered seats can be graded.

Examples:
  registrar grade --registration <uuid> --grade B`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("registration", regID)
		if err != nil {
			return err
		}
		reg, err := deps.Services.Registrations.AssignGradeFromToken(cmd.Context(), id, regGrade)
		if err != nil {
			return err
		}
		return printJSON(reg)
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Move the oldest waitlisted student into a free seat",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("offering", regOffering)
		if err != nil {
			return err
		}
		reg, err := deps.Services.Registrations.PromoteWaitlisted(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(reg)
	},
}

type enrollmentReport struct {
	OfferingID uuid.UUID `json:"offeringId"`
	Capacity   int       `json:"capacity"`
	Registered int       `json:"registered"`
	Waitlisted int       `json:"waitlisted"`
}

var enrollmentCmd = &cobra.Command{
	Use:   "enrollment",
	Short: "Show the registered and waitlisted counts of an offering",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("offering", regOffering)
		if err != nil {
			return err
		}
		offering, err := deps.Services.Offerings.GetOffering(cmd.Context(), id)
		if err != nil {
			return err
		}
		registered, err := deps.Services.Registrations.CurrentEnrollment(cmd.Context(), id)
		if err != nil {
			return err
		}
		regs, err := deps.Services.Registrations.ListForOffering(cmd.Context(), id)
		if err != nil {
			return err
		}

		report := enrollmentReport{OfferingID: id, Capacity: offering.Capacity, Registered: registered}
		for _, r := range regs {
			if r.Status == models.StatusWaitlisted {
				report.Waitlisted++
			}
		}
		return printJSON(report)
	},
}

var registrationsCmd = &cobra.Command{
	Use:   "registrations",
	Short: "List the registrations of a student or an offering",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			regs []*models.Registration
			err  error
		)
		if cmd.Flags().Changed("student") {
			studentID, perr := parseID("student", regStudent)
			if perr != nil {
				return perr
			}
			regs, err = deps.Services.Registrations.ListForStudent(cmd.Context(), studentID)
		} else {
			offeringID, perr := parseID("offering", regOffering)
			if perr != nil {
				return perr
			}
			regs, err = deps.Services.Registrations.ListForOffering(cmd.Context(), offeringID)
		}
		if err != nil {
			return err
		}
		return printJSON(regs)
	},
}

func init() {
	registerCmd.Flags().StringVar(&regStudent, "student", "", "student user UUID")
	registerCmd.Flags().StringVar(&regOffering, "offering", "", "offering UUID")
	registerCmd.Flags().BoolVar(&regNoWaitlist, "no-waitlist", false, "fail instead of waitlisting when the offering is full")
	_ = registerCmd.MarkFlagRequired("student")
	_ = registerCmd.MarkFlagRequired("offering")

	for _, c := range []*cobra.Command{dropCmd, gradeCmd} {
		c.Flags().StringVar(&regID, "registration", "", "registration UUID")
		_ = c.MarkFlagRequired("registration")
	}
	gradeCmd.Flags().StringVar(&regGrade, "grade", "", "letter grade")
	_ = gradeCmd.MarkFlagRequired("grade")

	for _, c := range []*cobra.Command{promoteCmd, enrollmentCmd} {
		c.Flags().StringVar(&regOffering, "offering", "", "offering UUID")
		_ = c.MarkFlagRequired("offering")
	}

	registrationsCmd.Flags().StringVar(&regStudent, "student", "", "student user UUID")
	registrationsCmd.Flags().StringVar(&regOffering, "offering", "", "offering UUID")
	registrationsCmd.MarkFlagsOneRequired("student", "offering")
	registrationsCmd.MarkFlagsMutuallyExclusive("student", "offering")

	rootCmd.AddCommand(registerCmd, dropCmd, gradeCmd, promoteCmd, enrollmentCmd, registrationsCmd)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/yigit/registrar/internal/app/models"
	appServices "github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/pkg/helpers"
)

var (
	termStart string
	termEnd   string
	termID    int64

	offeringCourse     string
	offeringInstructor string
	offeringInput      appServices.CreateOfferingInput
	offeringID         string

	meetingDay   string
	meetingStart string
	meetingEnd   string
)

var termCreateCmd = &cobra.Command{
	Use:   "term:create",
	Short: "Create a term from its start and end dates",
	Long: `Create a term. The name is derived from the start date: terms starting
in September or later are winter terms, all others summer terms.

Examples:
  registrar term:create --start 2025-01-06 --end 2025-04-30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := helpers.ParseDate(termStart)
		if err != nil {
			return err
		}
		end, err := helpers.ParseDate(termEnd)
		if err != nil {
			return err
		}
		term, err := deps.Services.Terms.CreateTerm(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		return printJSON(term)
	},
}

var termListCmd = &cobra.Command{
	Use:   "term:list",
	Short: "List terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		terms, err := deps.Services.Terms.ListTerms(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(terms)
	},
}

var offeringCreateCmd = &cobra.Command{
	Use:   "offering:create",
	Short: "Offer a course in a term",
	Long: `Offer a course in a term with an instructor and a seat capacity.

Examples:
  registrar offering:create --course <uuid> --term 2 --instructor <uuid> --capacity 40 --location "MC 300"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := offeringInput
		var err error
		if input.CourseID, err = parseID("course", offeringCourse); err != nil {
			return err
		}
		if input.InstructorID, err = parseID("instructor", offeringInstructor); err != nil {
			return err
		}
		offering, err := deps.Services.Offerings.CreateOffering(cmd.Context(), input)
		if err != nil {
			return err
		}
		return printJSON(offering)
	},
}

var offeringListCmd = &cobra.Command{
	Use:   "offering:list",
	Short: "List the offerings of a term",
	RunE: func(cmd *cobra.Command, args []string) error {
		offerings, err := deps.Services.Offerings.ListOfferingsByTerm(cmd.Context(), termID)
		if err != nil {
			return err
		}
		return printJSON(offerings)
	},
}

var meetingAddCmd = &cobra.Command{
	Use:   "meeting:add",
	Short: "Add a weekly meeting slot to an offering",
	Long: `Add a weekly meeting slot. Days are monday through friday; times are HH:MM.

Examples:
  registrar meeting:add --offering <uuid> --day monday --start 09:00 --end 10:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("offering", offeringID)
		if err != nil {
			return err
		}
		meeting, err := deps.Services.Offerings.AddMeetingFromToken(cmd.Context(), id, meetingDay, meetingStart, meetingEnd)
		if err != nil {
			return err
		}
		return printJSON(meeting)
	},
}

var meetingListCmd = &cobra.Command{
	Use:   "meeting:list",
	Short: "List the weekly meetings of an offering",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("offering", offeringID)
		if err != nil {
			return err
		}
		meetings, err := deps.Services.Offerings.MeetingsFor(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(meetingViews(meetings))
	},
}

type meetingView struct {
	ID      int64  `json:"id"`
	Weekday string `json:"weekday"`
	Day     string `json:"day"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func meetingViews(meetings []*models.MeetingEntry) []meetingView {
	views := make([]meetingView, 0, len(meetings))
	for _, m := range meetings {
		views = append(views, meetingView{
			ID:      m.ID,
			Weekday: m.Weekday.String(),
			Day:     m.Weekday.Label(),
			Start:   m.StartTime.String(),
			End:     m.EndTime.String(),
		})
	}
	return views
}

func init() {
	termCreateCmd.Flags().StringVar(&termStart, "start", "", "first day of the term (YYYY-MM-DD)")
	termCreateCmd.Flags().StringVar(&termEnd, "end", "", "last day of the term (YYYY-MM-DD)")
	_ = termCreateCmd.MarkFlagRequired("start")
	_ = termCreateCmd.MarkFlagRequired("end")

	offeringCreateCmd.Flags().StringVar(&offeringCourse, "course", "", "course UUID")
	offeringCreateCmd.Flags().Int64Var(&offeringInput.TermID, "term", 0, "term ID")
	offeringCreateCmd.Flags().StringVar(&offeringInstructor, "instructor", "", "instructor UUID")
	offeringCreateCmd.Flags().IntVar(&offeringInput.Capacity, "capacity", 0, "seat capacity")
	offeringCreateCmd.Flags().StringVar(&offeringInput.Location, "location", "", "room or building")
	for _, name := range []string{"course", "term", "instructor", "capacity"} {
		_ = offeringCreateCmd.MarkFlagRequired(name)
	}

	offeringListCmd.Flags().Int64Var(&termID, "term", 0, "term ID")
	_ = offeringListCmd.MarkFlagRequired("term")

	for _, c := range []*cobra.Command{meetingAddCmd, meetingListCmd} {
		c.Flags().StringVar(&offeringID, "offering", "", "offering UUID")
		_ = c.MarkFlagRequired("offering")
	}
	meetingAddCmd.Flags().StringVar(&meetingDay, "day", "", "weekday, monday to friday")
	meetingAddCmd.Flags().StringVar(&meetingStart, "start", "", "start time (HH:MM)")
	meetingAddCmd.Flags().StringVar(&meetingEnd, "end", "", "end time (HH:MM)")
	for _, name := range []string{"day", "start", "end"} {
		_ = meetingAddCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(termCreateCmd, termListCmd, offeringCreateCmd, offeringListCmd, meetingAddCmd, meetingListCmd)
}

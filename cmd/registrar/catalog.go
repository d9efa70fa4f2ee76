package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	appServices "github.com/yigit/registrar/internal/app/services"
)

var (
	deptCode string
	deptName string

	courseInput       appServices.CreateCourseInput
	courseDeptCode    string
	courseDescription string

	prereqCourse string
	prereqOf     string
)

var deptCreateCmd = &cobra.Command{
	Use:   "dept:create",
	Short: "Create a department",
	Long: `Create a department identified by an upper-case code.

Examples:
  registrar dept:create --code COSC --name "Computer Science"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		department, err := deps.Services.Catalog.CreateDepartment(cmd.Context(), deptCode, deptName)
		if err != nil {
			return err
		}
		return printJSON(department)
	},
}

var deptListCmd = &cobra.Command{
	Use:   "dept:list",
	Short: "List departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		departments, err := deps.Services.Catalog.ListDepartments(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(departments)
	},
}

var courseCreateCmd = &cobra.Command{
	Use:   "course:create",
	Short: "Create a course in a department",
	Long: `Create a course in the department with the given code.

Examples:
  registrar course:create --dept COSC --number "COSC 1P02" --title "Intro" --credits 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		department, err := deps.Services.Catalog.GetDepartmentByCode(cmd.Context(), courseDeptCode)
		if err != nil {
			return err
		}

		input := courseInput
		input.DepartmentID = department.ID
		if cmd.Flags().Changed("description") {
			input.Description = &courseDescription
		}

		course, err := deps.Services.Catalog.CreateCourse(cmd.Context(), input)
		if err != nil {
			return err
		}
		return printJSON(course)
	},
}

var courseListCmd = &cobra.Command{
	Use:   "course:list",
	Short: "List the courses of a department",
	RunE: func(cmd *cobra.Command, args []string) error {
		department, err := deps.Services.Catalog.GetDepartmentByCode(cmd.Context(), courseDeptCode)
		if err != nil {
			return err
		}
		courses, err := deps.Services.Catalog.ListCoursesByDepartment(cmd.Context(), department.ID)
		if err != nil {
			return err
		}
		return printJSON(courses)
	},
}

var prereqAddCmd = &cobra.Command{
	Use:   "prereq:add",
	Short: "Require one course before another",
	Long: `Record that --course requires --prereq. Adding an existing edge is a no-op.

Examples:
  registrar prereq:add --course <uuid> --prereq <uuid>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, prereqID, err := prereqEdgeFlags()
		if err != nil {
			return err
		}
		return deps.Services.Prerequisites.AddPrerequisite(cmd.Context(), courseID, prereqID)
	},
}

var prereqRemoveCmd = &cobra.Command{
	Use:   "prereq:remove",
	Short: "Remove a prerequisite edge",
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, prereqID, err := prereqEdgeFlags()
		if err != nil {
			return err
		}
		return deps.Services.Prerequisites.RemovePrerequisite(cmd.Context(), courseID, prereqID)
	},
}

var prereqListCmd = &cobra.Command{
	Use:   "prereq:list",
	Short: "List the direct prerequisites of a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := parseID("course", prereqCourse)
		if err != nil {
			return err
		}
		courses, err := deps.Services.Prerequisites.PrerequisitesOf(cmd.Context(), courseID)
		if err != nil {
			return err
		}
		return printJSON(courses)
	},
}

func prereqEdgeFlags() (courseID, prereqID uuid.UUID, err error) {
	if courseID, err = parseID("course", prereqCourse); err != nil {
		return
	}
	prereqID, err = parseID("prereq", prereqOf)
	return
}

func init() {
	deptCreateCmd.Flags().StringVar(&deptCode, "code", "", "department code, e.g. COSC")
	deptCreateCmd.Flags().StringVar(&deptName, "name", "", "department name")
	_ = deptCreateCmd.MarkFlagRequired("code")
	_ = deptCreateCmd.MarkFlagRequired("name")

	for _, c := range []*cobra.Command{courseCreateCmd, courseListCmd} {
		c.Flags().StringVar(&courseDeptCode, "dept", "", "department code")
		_ = c.MarkFlagRequired("dept")
	}
	courseCreateCmd.Flags().StringVar(&courseInput.CourseNumber, "number", "", "course number, e.g. \"COSC 1P02\"")
	courseCreateCmd.Flags().StringVar(&courseInput.Title, "title", "", "course title")
	courseCreateCmd.Flags().StringVar(&courseDescription, "description", "", "course description")
	courseCreateCmd.Flags().IntVar(&courseInput.Credits, "credits", 0, "credit count")
	_ = courseCreateCmd.MarkFlagRequired("number")
	_ = courseCreateCmd.MarkFlagRequired("title")

	for _, c := range []*cobra.Command{prereqAddCmd, prereqRemoveCmd, prereqListCmd} {
		c.Flags().StringVar(&prereqCourse, "course", "", "course UUID")
		_ = c.MarkFlagRequired("course")
	}
	for _, c := range []*cobra.Command{prereqAddCmd, prereqRemoveCmd} {
		c.Flags().StringVar(&prereqOf, "prereq", "", "prerequisite course UUID")
		_ = c.MarkFlagRequired("prereq")
	}

	rootCmd.AddCommand(deptCreateCmd, deptListCmd, courseCreateCmd, courseListCmd,
		prereqAddCmd, prereqRemoveCmd, prereqListCmd)
}

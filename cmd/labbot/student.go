package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideamans/go-sheettable/roster"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage the Students table",
}

var (
	studentName     string
	studentGroup    string
	studentSubgroup string
)

var studentAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add or update a student",
	Long: `Add writes a student row. An existing row with the same username is
replaced, otherwise the first cleared row is reused.

Example:
  labbot student add alice --name "Alice Liddell" --group IU7-61 --subgroup 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		s := roster.Student{Username: args[0], FullName: studentName, Group: studentGroup, Subgroup: studentSubgroup}
		if err := r.AddStudent(cmd.Context(), s); err != nil {
			return fmt.Errorf("add student: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Student %s saved\n", s.Username)
		return nil
	},
}

var studentRemoveCmd = &cobra.Command{
	Use:     "remove USERNAME",
	Aliases: []string{"rm"},
	Short:   "Clear a student row",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		if err := r.RemoveStudent(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("remove student: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Student %s removed\n", args[0])
		return nil
	},
}

var studentGetCmd = &cobra.Command{
	Use:   "get USERNAME",
	Short: "Show a student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		s, found, err := r.StudentByUsername(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if !found {
			return fmt.Errorf("student %s not found", args[0])
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), s)
		}
		printStudents(cmd, []roster.Student{s})
		return nil
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List students",
	Long: `List prints every student, or the students of one group with --group.

Example:
  labbot student list
  labbot student list --group IU7-61 --subgroup 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}

		var students []roster.Student
		switch {
		case studentGroup != "":
			students, err = r.StudentsInGroup(cmd.Context(), studentGroup, studentSubgroup)
		case studentSubgroup != "":
			return fmt.Errorf("--subgroup requires --group")
		default:
			students, err = r.Students(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), students)
		}
		printStudents(cmd, students)
		return nil
	},
}

func init() {
	studentAddCmd.Flags().StringVar(&studentName, "name", "", "full name")
	studentAddCmd.Flags().StringVar(&studentGroup, "group", "", "study group")
	studentAddCmd.Flags().StringVar(&studentSubgroup, "subgroup", "", "subgroup within the group")
	studentListCmd.Flags().StringVar(&studentGroup, "group", "", "only students of this group")
	studentListCmd.Flags().StringVar(&studentSubgroup, "subgroup", "", "only students of this subgroup")

	studentCmd.AddCommand(studentAddCmd, studentRemoveCmd, studentGetCmd, studentListCmd)
}

func printStudents(cmd *cobra.Command, students []roster.Student) {
	rows := make([][]string, len(students))
	for i, s := range students {
		rows[i] = []string{s.Username, s.FullName, s.Group, s.Subgroup}
	}
	printTable(cmd.OutOrStdout(), "student", []string{"USERNAME", "NAME", "GROUP", "SUBGROUP"}, rows)
}

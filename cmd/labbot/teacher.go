package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideamans/go-sheettable/roster"
)

var teacherCmd = &cobra.Command{
	Use:   "teacher",
	Short: "Manage the Teachers table",
}

var teacherName string

var teacherAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add or update a teacher",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		t := roster.Teacher{Username: args[0], FullName: teacherName}
		if err := r.AddTeacher(cmd.Context(), t); err != nil {
			return fmt.Errorf("add teacher: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Teacher %s saved\n", t.Username)
		return nil
	},
}

var teacherRemoveCmd = &cobra.Command{
	Use:     "remove USERNAME",
	Aliases: []string{"rm"},
	Short:   "Clear a teacher row",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		if err := r.RemoveTeacher(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("remove teacher: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Teacher %s removed\n", args[0])
		return nil
	},
}

var teacherGetCmd = &cobra.Command{
	Use:   "get USERNAME",
	Short: "Show a teacher",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		t, found, err := r.TeacherByUsername(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get teacher: %w", err)
		}
		if !found {
			return fmt.Errorf("teacher %s not found", args[0])
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), t)
		}
		printTeachers(cmd, []roster.Teacher{t})
		return nil
	},
}

var teacherListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teachers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		teachers, err := r.Teachers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list teachers: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), teachers)
		}
		printTeachers(cmd, teachers)
		return nil
	},
}

func init() {
	teacherAddCmd.Flags().StringVar(&teacherName, "name", "", "full name")

	teacherCmd.AddCommand(teacherAddCmd, teacherRemoveCmd, teacherGetCmd, teacherListCmd)
}

func printTeachers(cmd *cobra.Command, teachers []roster.Teacher) {
	rows := make([][]string, len(teachers))
	for i, t := range teachers {
		rows[i] = []string{t.Username, t.FullName}
	}
	printTable(cmd.OutOrStdout(), "teacher", []string{"USERNAME", "NAME"}, rows)
}

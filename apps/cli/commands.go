package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
	"github.com/trezcool/absentee/core/lead"
)

func (cli *commandLine) teachersCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "teachers",
		Short: "List the teachers an absence can be reported for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.absenceSvc()
			if err != nil {
				return err
			}

			cli.phase(absence.PhaseTeachers)
			var teachers []absence.Teacher
			if refresh {
				teachers, err = svc.RefreshTeachers(cmd.Context())
			} else {
				teachers, err = svc.Teachers(cmd.Context())
			}
			if err != nil {
				return err
			}
			for _, t := range teachers {
				fmt.Fprintln(cli.out, t.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the list from Notion instead of the cache")
	return cmd
}

func (cli *commandLine) notifyCmd() *cobra.Command {
	var teacher, date string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Create a notification task for each student of an absent teacher",
		Long: `Create a task named after the absent teacher, with one "Notify Student: NAME" subtask
for every student whose next lesson with that teacher falls on the given date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.absenceSvc()
			if err != nil {
				return err
			}

			na := absence.NewAbsence{Teacher: teacher, Date: svc.DefaultDate()}
			if date != "" {
				if na.Date, err = core.ParseDate(date); err != nil {
					return core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
				}
			}

			ctx := absence.WithProgress(cmd.Context(), cli.phase)
			report, err := svc.CreateTasks(ctx, na)
			if err != nil {
				return err
			}
			cli.notice(report.Notice)
			for _, st := range report.Subtasks {
				fmt.Fprintf(cli.out, "  - %s\n", st.Name)
			}
			if n := len(report.Skipped); n > 0 {
				fmt.Fprintf(cli.out, "%d student record(s) skipped:\n", n)
				for _, sk := range report.Skipped {
					fmt.Fprintf(cli.out, "  %s (%s)\n", sk.StudentID, sk.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&teacher, "teacher", "", "the absent teacher's name")
	cmd.Flags().StringVar(&date, "date", "", "the day of the absence, YYYY-MM-DD (default tomorrow)")
	_ = cmd.MarkFlagRequired("teacher")
	return cmd
}

func (cli *commandLine) archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID...",
		Short: "Archive tasks left behind by an incomplete notify",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, ids []string) error {
			svc, err := cli.absenceSvc()
			if err != nil {
				return err
			}

			cli.phase("Archiving tasks")
			if err = svc.ArchiveTasks(cmd.Context(), ids...); err != nil {
				return err
			}
			cli.notice(absence.Notice{Level: absence.NoticeSuccess, Message: fmt.Sprintf("%d task(s) archived.", len(ids))})
			return nil
		},
	}
}

func (cli *commandLine) leadCmd() *cobra.Command {
	var l lead.Lead

	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Submit a lead to the intake endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.leadSvc()
			if err != nil {
				return err
			}

			cli.phase("Sending lead")
			if err = svc.Submit(cmd.Context(), l); err != nil {
				return err
			}
			cli.notice(absence.Notice{Level: absence.NoticeSuccess, Message: lead.SuccessMessage})
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&l.FirstName, "first-name", "", "")
	flags.StringVar(&l.LastName, "last-name", "", "")
	flags.StringVar(&l.Email, "email", "", "")
	flags.StringVar(&l.Phone, "phone", "", "")
	flags.StringArrayVar(&l.LessonTypes, "lesson-type", nil, "repeat for several lesson types")
	flags.StringVar(&l.StudentType, "student-type", "", "")
	flags.StringVar(&l.Level, "level", "", "")
	flags.StringVar(&l.Message, "message", "", "optional")
	flags.StringArrayVar(&l.ReferralSources, "referral-source", nil, "optional; repeat for several sources")
	return cmd
}

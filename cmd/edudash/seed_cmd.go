package main

import (
	"fmt"
	"time"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/thread"
	"github.com/jcooky/go-din"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// newSeedCmd writes a small demo school straight into the server database.
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo profiles, students and threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			threadManager, err := din.GetT[thread.Manager](c)
			if err != nil {
				return err
			}

			profiles := []entity.Profile{
				{ID: "parent-1", FirstName: "Pat", LastName: "Parent", Role: entity.RoleParent},
				{ID: "teacher-1", FirstName: "Tess", LastName: "Teacher", Role: entity.RoleTeacher},
				{ID: "principal-1", FirstName: "Prue", LastName: "Principal", Role: entity.RolePrincipal},
			}
			for i := range profiles {
				if err := threadManager.SaveProfile(c, &profiles[i]); err != nil {
					return err
				}
			}
			if err := threadManager.SaveStudent(c, &entity.Student{ID: "student-1", FirstName: "Amy", LastName: "Kim"}); err != nil {
				return err
			}

			threads := []entity.Thread{
				{
					ID:        "thread-amy",
					Subject:   "Amy's reading",
					Type:      entity.ThreadTypeParentTeacher,
					StudentID: lo.ToPtr("student-1"),
					Participants: []entity.ThreadParticipant{
						{UserID: "parent-1", Role: entity.RoleParent},
						{UserID: "teacher-1", Role: entity.RoleTeacher},
					},
				},
				{
					ID:      "thread-general",
					Subject: "General",
					Type:    entity.ThreadTypeParentTeacher,
					Participants: []entity.ThreadParticipant{
						{UserID: "parent-1", Role: entity.RoleParent},
						{UserID: "teacher-1", Role: entity.RoleTeacher},
					},
				},
				{
					ID:      "thread-principal",
					Subject: "Term calendar",
					Type:    entity.ThreadTypeParentPrincipal,
					Participants: []entity.ThreadParticipant{
						{UserID: "parent-1", Role: entity.RoleParent},
						{UserID: "principal-1", Role: entity.RolePrincipal},
					},
				},
			}
			for i := range threads {
				if _, err := threadManager.CreateThread(c, &threads[i]); err != nil {
					return err
				}
			}

			now := time.Now()
			for _, m := range []entity.Message{
				{ID: "seed-1", ThreadID: "thread-general", SenderID: "teacher-1", Content: "Welcome to the new term!", CreatedAt: now.Add(-48 * time.Hour)},
				{ID: "seed-2", ThreadID: "thread-amy", SenderID: "teacher-1", Content: "Amy read two chapters today.", CreatedAt: now.Add(-2 * time.Hour)},
				{ID: "seed-3", ThreadID: "thread-principal", SenderID: "principal-1", Content: "The calendar is out.", CreatedAt: now.Add(-time.Hour)},
			} {
				if _, err := threadManager.InsertMessage(c, &m); err != nil {
					return err
				}
				if err := threadManager.TouchThread(c, m.ThreadID, m.CreatedAt); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "seeded 3 profiles and 3 threads")
			return nil
		},
	}
}

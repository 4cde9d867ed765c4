/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"annoflow/internal/bootstrap"
	"annoflow/internal/bootstrap/logging"
	"annoflow/internal/errs"
	sqliterepo "annoflow/internal/infrastructure/persistence/sqlite/repository"
	"annoflow/internal/ports"
	"annoflow/internal/usecase/workflow"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with a demo organization and project",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *workflow.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		if err := seedDemo(ctx, app, svc); err != nil {
			logging.Error(ctx, "seed failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed demo data")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "demo data seeded"); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func seedDemo(ctx context.Context, app *bootstrap.App, svc *workflow.Service) error {
	orgs := sqliterepo.NewOrganizationRepository(app.DB, app.Policy)
	projects := sqliterepo.NewProjectRepository(app.DB, app.Policy)
	annotations := sqliterepo.NewAnnotationRepository(app.DB, app.Policy)

	desc := "Demo customer for local development"
	org, err := orgs.CreateOrganization(ctx, ports.OrganizationCreate{Name: "Acme Research", Description: &desc})
	if err != nil {
		return err
	}

	pm, err := orgs.CreateUser(ctx, ports.UserCreate{Email: "pm@acme.example", OrgID: &org.OrgID})
	if err != nil {
		return err
	}
	expertise := `{"en": 4.5, "zh": 3.0}`
	annotator, err := orgs.CreateUser(ctx, ports.UserCreate{
		Email:             "annotator@acme.example",
		OrgID:             &org.OrgID,
		LanguageExpertise: &expertise,
	})
	if err != nil {
		return err
	}

	for _, name := range []string{"annotator", "reviewer", "pm"} {
		if _, err := orgs.CreateRole(ctx, name, nil); err != nil {
			return err
		}
	}

	project, err := projects.CreateProject(ctx, ports.ProjectCreate{
		OrgID:      org.OrgID,
		Name:       "Contract Review Corpus",
		ClientPMID: pm.UserID,
	})
	if err != nil {
		return err
	}

	file, err := projects.CreateFile(ctx, ports.FileCreate{
		ProjectID:  project.ProjectID,
		Name:       "contracts-batch-1.jsonl",
		UploadedBy: pm.UserID,
		FileType:   "dataset",
	})
	if err != nil {
		return err
	}

	version, err := svc.UploadVersion(ctx, workflow.UploadVersionInput{
		FileID:      file.FileID,
		UploadedBy:  pm.UserID,
		StoragePath: fmt.Sprintf("files/%d/contracts-batch-1.jsonl", file.FileID),
	})
	if err != nil {
		return err
	}

	job, err := annotations.CreateJob(ctx, ports.AnnotationJobCreate{
		FileID:    file.FileID,
		ProjectID: project.ProjectID,
		Language:  "en",
		Priority:  "high",
	})
	if err != nil {
		return err
	}

	if _, err := annotations.CreateAssignment(ctx, ports.AssignmentCreate{
		JobID:  job.JobID,
		UserID: annotator.UserID,
		Role:   "annotator",
	}); err != nil {
		return err
	}

	logging.Info(ctx, "seeded demo data",
		slog.Uint64("org_id", org.OrgID),
		slog.Uint64("project_id", project.ProjectID),
		slog.Uint64("file_id", file.FileID),
		slog.Uint64("version_id", version.VersionID),
		slog.Uint64("job_id", job.JobID),
	)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

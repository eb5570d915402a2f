package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"kyc-intake/internal/engine"
	"kyc-intake/internal/kyc/models"
	"kyc-intake/internal/kyc/service"
	"kyc-intake/internal/kyc/transform"
	"kyc-intake/internal/kyc/validation"
	"kyc-intake/internal/platform/config"
	"kyc-intake/internal/platform/logger"
)

var errInvalidForm = errors.New("form has validation errors")

// NewRootCommand builds the kycctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "kycctl",
		Short:        "Validate, transform and submit KYC forms",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading configuration")

	root.AddCommand(
		newValidateCommand(),
		newTransformCommand(),
		newSubmitCommand(),
	)
	return root
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a form or submission against every KYC rule",
		Long: `Reads a bare form or a {"taskId","formData"} submission from FILE
("-" for stdin) and lists every violation in section order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(cmd, args[0])
			if err != nil {
				return err
			}
			res := validation.Validate(sub.FormData)
			out := cmd.OutOrStdout()
			if res.OK() {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, e := range res.Errors {
				fmt.Fprintf(out, "%s: %s\n", e.Field, e.Message)
			}
			return errInvalidForm
		},
	}
}

func newTransformCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform FILE",
		Short: "Print the task variables a form would be submitted with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(cmd, args[0])
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			if res := validation.Validate(sub.FormData); !force && !res.OK() {
				return fmt.Errorf("%w: %v", errInvalidForm, res.Fields())
			}
			vars, err := transform.Transform(sub.FormData, transform.WithBackup(sub.RawFormData))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), vars)
		},
	}
	cmd.Flags().Bool("force", false, "transform even when the form does not validate")
	return cmd
}

func newSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Validate a submission and complete its external task",
		Long: `Runs the same pipeline as POST /api/camunda/submit-kyc against the
engine configured by CAMUNDA_BASE_URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			sub, err := readSubmission(cmd, args[0])
			if err != nil {
				return err
			}
			if taskID, _ := cmd.Flags().GetString("task-id"); taskID != "" {
				sub.TaskID = taskID
			}

			svc := service.New(engine.New(cfg.Engine.BaseURL, cfg.Engine.Timeout), cfg.Engine.WorkerID,
				service.WithLogger(logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level)),
			)
			res, err := svc.Submit(cmd.Context(), sub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed task %s\n", res.TaskID)
			if len(res.EngineResponse) == 0 {
				return nil
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, res.EngineResponse, "", "  "); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return err
		},
	}
	cmd.Flags().String("task-id", "", "external task id, overrides the one in FILE")
	return cmd
}

// readSubmission accepts either a submission envelope or a bare form.
func readSubmission(cmd *cobra.Command, path string) (models.Submission, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return models.Submission{}, fmt.Errorf("%s is not valid JSON", path)
	}

	var sub models.Submission
	if gjson.GetBytes(raw, "formData").Exists() {
		err = json.Unmarshal(raw, &sub)
	} else {
		sub.FormData = &models.FormModel{}
		err = json.Unmarshal(raw, sub.FormData)
		if gjson.ParseBytes(raw).IsObject() {
			sub.RawFormData = bytes.TrimSpace(raw)
		}
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return sub, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

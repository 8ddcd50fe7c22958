package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"appointment-workers/internal/models"
)

type evaluateOptions struct {
	inputPath   string
	name        string
	desired     string
	cleared     bool
	noticeSent  string
	certs       []string
	education   string
	insurance   bool
	messagesOut bool
}

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	var eo evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Judge whether a candidate can be appointed on a desired date",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := eo.candidateInput()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			candidate, err := input.ToCandidate(a.service.Parser())
			if err != nil {
				return err
			}
			res, err := a.service.Evaluate(ctx, candidate)
			if err != nil {
				return err
			}
			view := models.NewFeasibilityView(res)

			if eo.messagesOut {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(view.Messages, "\n"))
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&eo.inputPath, "input", "i", "", "candidate JSON file; other candidate flags are ignored")
	f.StringVar(&eo.name, "name", "", "candidate name")
	f.StringVar(&eo.desired, "desired", "", "desired appointment date")
	f.BoolVar(&eo.cleared, "cleared", false, "association clearance already completed")
	f.StringVar(&eo.noticeSent, "notice-sent", "", "date the clearance notice was mailed")
	f.StringSliceVar(&eo.certs, "cert", nil, "held certifications: life, damage, third, variable")
	f.StringVar(&eo.education, "education", "", "registration training: none, new or experienced")
	f.BoolVar(&eo.insurance, "insurance", false, "guarantee insurance already checked")
	f.BoolVar(&eo.messagesOut, "messages", false, "print only the explanation lines")
	return cmd
}

func (eo evaluateOptions) candidateInput() (models.CandidateInput, error) {
	var in models.CandidateInput
	if eo.inputPath != "" {
		data, err := os.ReadFile(eo.inputPath)
		if err != nil {
			return in, err
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("decode %s: %w", eo.inputPath, err)
		}
		return in, nil
	}

	if eo.desired == "" {
		return in, fmt.Errorf("--desired or --input is required")
	}
	in.Name = eo.name
	in.DesiredDate = eo.desired
	in.CertProofSentDate = eo.noticeSent
	in.IsAssociationCancelled = &eo.cleared
	in.InsuranceChecked = &eo.insurance
	if eo.education != "" {
		in.EducationStatus = &eo.education
	}
	for _, c := range eo.certs {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "life":
			in.Certifications.Life = true
		case "damage", "nonlife":
			in.Certifications.Damage = true
		case "third":
			in.Certifications.Third = true
		case "variable":
			in.Certifications.Variable = true
		default:
			return in, fmt.Errorf("unknown certification %q", c)
		}
	}
	return in, nil
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"multiball-waitlist/pkg/forms"
)

const defaultAPIURL = "http://localhost:8080"

func newSubscribeCmd() *cobra.Command {
	var apiURL, email string

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Submit the landing page signup form",
		Example: `  waitlist subscribe --email ada@example.com
  waitlist subscribe --api https://multiballacademy.com --email ada@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.New(forms.Signup, forms.NewClient(apiURL, cfg.HTTPTimeout))
			if err := form.Set(forms.FieldEmail, email); err != nil {
				return err
			}
			return submit(cmd, form, forms.Signup)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", defaultAPIURL, "base URL of the waitlist API")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newJoinCmd() *cobra.Command {
	var apiURL string
	values := map[string]*string{}

	cmd := &cobra.Command{
		Use:     "join",
		Short:   "Submit the camp crew interest form",
		Example: `  waitlist join --name "Ada Lovelace" --email ada@example.com --role lead-coach`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.New(forms.Join, forms.NewClient(apiURL, cfg.HTTPTimeout))
			for _, field := range forms.Join.Fields {
				if err := form.Set(field, *values[field]); err != nil {
					return err
				}
			}
			return submit(cmd, form, forms.Join)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", defaultAPIURL, "base URL of the waitlist API")
	usage := map[string]string{
		forms.FieldName:       "full name",
		forms.FieldEmail:      "email address",
		forms.FieldRole:       "role of interest: lead-coach, maker-assistant, volunteer, multiple",
		forms.FieldBackground: "your background (optional)",
		forms.FieldWhy:        "why this interests you (optional)",
	}
	for _, field := range forms.Join.Fields {
		values[field] = cmd.Flags().String(field, "", usage[field])
	}
	return cmd
}

func submit(cmd *cobra.Command, form *forms.Form, kind forms.Kind) error {
	out := cmd.OutOrStdout()

	err := form.Submit(cmd.Context())
	if errors.Is(err, forms.ErrInvalid) {
		printFieldErrors(cmd.ErrOrStderr(), form, kind)
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), form.Message())
		return err
	}

	fmt.Fprintf(out, "✓ %s\n", form.Message())
	return nil
}

func printFieldErrors(w io.Writer, form *forms.Form, kind forms.Kind) {
	for _, field := range kind.Required {
		if msg := form.FieldError(field); msg != "" {
			fmt.Fprintf(w, "%s: %s\n", field, msg)
		}
	}
}

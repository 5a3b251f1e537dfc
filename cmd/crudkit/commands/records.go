package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/crudkit/internal/constants"
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
	"github.com/fivetwenty-io/crudkit/pkg/form"
)

// attachmentFlags are shared by create and update.
type attachmentFlags struct {
	attach       []string
	maxSize      int64
	allowedTypes []string
}

func (a *attachmentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&a.attach, "attach", nil, "attach a file as [INPUT=]PATH (repeatable)")
	cmd.Flags().Int64Var(&a.maxSize, "max-size", 0, "reject attachments larger than this many bytes")
	cmd.Flags().StringSliceVar(&a.allowedTypes, "allow-type", nil, "allowed attachment MIME types, e.g. image/*")
}

func (a *attachmentFlags) serviceOptions() []crudkit.ServiceOption {
	return []crudkit.ServiceOption{
		crudkit.WithBlobValidator(crudkit.BlobValidator{
			MaxSize:      a.maxSize,
			AllowedTypes: a.allowedTypes,
		}),
	}
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var idPairs []string

	cmd := &cobra.Command{
		Use:   "get RESOURCE",
		Short: "Get a record",
		Long:  "Load one record addressed by its identifier, e.g. crudkit get users --id id=7",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifier(idPairs)
			if err != nil {
				return err
			}

			session, err := newFormSession(args[0], form.StateEdit, id)
			if err != nil {
				return err
			}
			defer session.Close()

			session.form.Load(cmd.Context())

			err = session.Err()
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", args[0], err)
			}

			return printRecord(cmd.OutOrStdout(), session.form.Record())
		},
	}

	cmd.Flags().StringArrayVar(&idPairs, "id", nil, "identifier field as KEY=VALUE (repeatable)")

	return cmd
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var (
		page     int
		pageSize int
		orderBy  string
		search   string
		filters  []string
		all      bool
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "list RESOURCE",
		Short: "List records",
		Long:  "List one page of records, or every page with --all",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(args[0])
			if err != nil {
				return err
			}

			params := crudkit.NewQueryParams().
				WithPage(page, pageSize).
				WithOrderBy(orderBy).
				WithSearch(search)

			for _, filter := range filters {
				key, value, ok := strings.Cut(filter, "=")
				if !ok || key == "" {
					return fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, filter)
				}

				params.WithFilter(key, value)
			}

			ctx := cmd.Context()

			if all {
				options := crudkit.DefaultPaginationOptions()
				options.MaxPages = maxPages

				if pageSize > 0 {
					options.PageSize = pageSize
				}

				records, err := crudkit.FetchAllPages[Record](ctx, service, params, options)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", args[0], err)
				}

				return printRecords(cmd.OutOrStdout(), records, fmt.Sprintf("%d record(s)", len(records)))
			}

			result := service.GetPaged(ctx, params)

			err = resultError(result)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", args[0], err)
			}

			paged := result.Response.Data
			summary := fmt.Sprintf("Page %d of %d, %d record(s) total", paged.PageIndex, paged.TotalPages, paged.TotalCount)

			return printRecords(cmd.OutOrStdout(), paged.Data, summary)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page index, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "records per page")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort expression")
	cmd.Flags().StringVar(&search, "search", "", "free text search")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.Flags().IntVar(&maxPages, "max-pages", constants.DefaultMaxPages, "page limit for --all, 0 for none")

	return cmd
}

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	var (
		dataFile    string
		setPairs    []string
		required    []string
		attachments attachmentFlags
	)

	cmd := &cobra.Command{
		Use:   "create RESOURCE",
		Short: "Create a record",
		Long: `Create a record from a JSON or YAML file and KEY=VALUE pairs.
Attachments switch the request to multipart/form-data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := buildRecord(dataFile, setPairs)
			if err != nil {
				return err
			}

			session, err := newFormSession(args[0], form.StateCreate, nil, attachments.serviceOptions()...)
			if err != nil {
				return err
			}
			defer session.Close()

			session.form.SetRecord(record)

			return saveRecord(cmd.Context(), cmd.OutOrStdout(), session, args[0], attachments.attach, requireFields(required))
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML file with the record, - for stdin")
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "record field as KEY=VALUE (repeatable)")
	cmd.Flags().StringSliceVar(&required, "require", nil, "fields that must be present before sending")
	attachments.register(cmd)

	return cmd
}

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	var (
		idPairs     []string
		dataFile    string
		setPairs    []string
		required    []string
		attachments attachmentFlags
	)

	cmd := &cobra.Command{
		Use:   "update RESOURCE",
		Short: "Update a record",
		Long:  "Load a record, merge the given fields into it and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifier(idPairs)
			if err != nil {
				return err
			}

			changes, err := buildRecord(dataFile, setPairs)
			if err != nil {
				return err
			}

			session, err := newFormSession(args[0], form.StateEdit, id, attachments.serviceOptions()...)
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cmd.Context()

			session.form.Load(ctx)

			err = session.Err()
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}

			record := session.form.Record()
			if record == nil {
				record = Record{}
			}

			for key, value := range changes {
				record[key] = value
			}

			session.form.SetRecord(record)

			return saveRecord(ctx, cmd.OutOrStdout(), session, args[0], attachments.attach, requireFields(required))
		},
	}

	cmd.Flags().StringArrayVar(&idPairs, "id", nil, "identifier field as KEY=VALUE (repeatable)")
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML file with fields to change, - for stdin")
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "record field as KEY=VALUE (repeatable)")
	cmd.Flags().StringSliceVar(&required, "require", nil, "fields that must be present before sending")
	attachments.register(cmd)

	return cmd
}

func saveRecord(
	ctx context.Context,
	w io.Writer,
	session *formSession,
	resource string,
	attach []string,
	validator crudkit.Validator,
) error {
	blobs, closeAll, err := openAttachments(attach)
	if err != nil {
		return err
	}
	defer closeAll()

	session.form.AddBlob(blobs...)

	err = session.form.Save(ctx, validator)
	if err != nil {
		return err
	}

	err = session.Err()
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", resource, err)
	}

	err = printRecord(w, session.form.Record())
	if err != nil {
		return err
	}

	if len(blobs) == 0 {
		return nil
	}

	stored := session.form.AddWithBlobsResponse().Response.Data.Blobs
	if len(stored) == 0 {
		stored = session.form.UpdateWithBlobsResponse().Response.Data.Blobs
	}

	return printBlobs(w, stored)
}

// printBlobs lists stored attachments in table output.
func printBlobs(w io.Writer, blobs []crudkit.UserBlob) error {
	switch viper.GetString("output") {
	case constants.FormatJSON, constants.FormatYAML:
		return nil
	}

	if len(blobs) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Attachment", "Input", "Type", "Size", "URL")

	for _, blob := range blobs {
		err := table.Append([]string{
			blob.Name,
			formatConfigValue(blob.InputName),
			formatConfigValue(blob.ContentType),
			strconv.FormatInt(blob.Size, 10),
			formatConfigValue(blob.URL),
		})
		if err != nil {
			return fmt.Errorf("failed to append row to table: %w", err)
		}
	}

	return renderTable(table)
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var (
		idPairs []string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "delete RESOURCE",
		Short: "Delete a record",
		Long:  "Delete one record addressed by its identifier after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifier(idPairs)
			if err != nil {
				return err
			}

			session, err := newFormSession(args[0], form.StateDelete, id)
			if err != nil {
				return err
			}
			defer session.Close()

			confirmed := force
			if !force {
				session.form.Hooks().OnBeforeDelete = func(proceed func()) {
					if confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete %s %s?", args[0], strings.Join(idPairs, " "))) {
						confirmed = true

						proceed()
					}
				}
			}

			err = session.form.Delete(cmd.Context(), crudkit.EmptyValidator{})
			if err != nil {
				return err
			}

			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")

				return nil
			}

			err = session.Err()
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], strings.Join(idPairs, " "))

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&idPairs, "id", nil, "identifier field as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

// confirm asks a yes/no question and defaults to no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"waitlist/internal/waitlist"

	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Импортировать записи из JSON (массив или {\"entries\": [...]}); - читает stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res := a.svc.BulkUpsert(cmd.Context(), rows)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "inserted: %d, updated: %d, total: %d\n", res.Inserted, res.Updated, res.Total())
			for _, e := range res.Errors {
				fmt.Fprintf(out, "row %d: %s\n", e.Index, e.Error)
			}
			return nil
		},
	}
}

func readImportFile(path string) ([]waitlist.RegisterInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return parseImport(data)
}

// parseImport принимает массив строк или объект с полем entries.
func parseImport(data []byte) ([]waitlist.RegisterInput, error) {
	data = bytes.TrimSpace(data)
	var rows []waitlist.RegisterInput
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("ошибка разбора записей: %w", err)
		}
	} else {
		var body struct {
			Entries []waitlist.RegisterInput `json:"entries"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("ошибка разбора записей: %w", err)
		}
		rows = body.Entries
	}
	if len(rows) == 0 {
		return nil, errors.New("список записей пуст")
	}
	return rows, nil
}

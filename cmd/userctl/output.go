package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dropDatabas3/hellouser/internal/services/users"
)

type userJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func printUser(w io.Writer, format string, u *users.UserOutput) error {
	if format == "json" {
		return printJSON(w, userJSON(*u))
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\tcreated=%s\tupdated=%s\n",
		u.ID, u.Email, u.DisplayName,
		u.CreatedAt.Format(time.RFC3339Nano), u.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/userdesk/userdesk/internal/users"
)

type command func(ctx context.Context, as *AppState, args []string) error

var commands = map[string]command{
	"list":   listUsers,
	"add":    addUser,
	"update": updateUser,
	"delete": deleteUser,
}

func listUsers(ctx context.Context, as *AppState, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	searchBy := fs.String("search-by", string(users.FieldName), "field to search: name or email")
	query := fs.String("q", "", "case-insensitive substring to search for")
	sortBy := fs.String("sort", string(users.FieldName), "field to sort by: name or email")
	desc := fs.Bool("desc", false, "sort descending")
	if err := fs.Parse(args); err != nil {
		return err
	}

	view := users.DefaultView()
	field, err := users.ParseField(*searchBy)
	if err != nil {
		return err
	}
	view.SearchBy = field
	view.Query = *query

	key, err := users.ParseField(*sortBy)
	if err != nil {
		return err
	}
	view.Sort = users.SortConfig{Key: key, Direction: users.Ascending}
	if *desc {
		view.Sort = view.Sort.Toggle(key)
	}

	if err := as.Users.Activate(ctx); err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}
	return printUsers(as.Out, view.Apply(as.Users.Users()))
}

func addUser(ctx context.Context, as *AppState, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "user name (required)")
	email := fs.String("email", "", "user email (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := as.Users.AddUser(ctx, users.User{Name: *name, Email: *email})
	return finishMutation(as, "add", err)
}

func updateUser(ctx context.Context, as *AppState, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.String("id", "", "id of the user to update (required)")
	name := fs.String("name", "", "new name")
	email := fs.String("email", "", "new email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := as.Users.UpdateUser(ctx, users.User{Name: *name, Email: *email}, *id)
	return finishMutation(as, "update", err)
}

func deleteUser(ctx context.Context, as *AppState, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "id of the user to delete (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := as.Users.DeleteUser(ctx, *id)
	return finishMutation(as, "delete", err)
}

// finishMutation prints the refreshed list when there is one, then reports
// the mutation's own error.
func finishMutation(as *AppState, op string, err error) error {
	if err != nil {
		as.Logger.Debug("Mutation failed", zap.String("command", op), zap.Error(err))
	}
	if list := as.Users.Users(); list != nil {
		if printErr := printUsers(as.Out, users.DefaultView().Apply(list)); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	return nil
}

func printUsers(out io.Writer, list []users.User) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No users available")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return w.Flush()
}

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// agenda prints a user's merged calendar, oldest first.
func (cli *commandLine) agenda(email string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	items, err := cli.calSvc.ItemsForUser(ctx, usr.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tSOURCE\tTITLE\tCLASS\tPRIVATE")
	for _, item := range items {
		private := ""
		if item.IsPrivate {
			private = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			item.Date.Format("2006-01-02"), item.SourceType, item.Title, item.ClassName, private)
	}
	return w.Flush()
}

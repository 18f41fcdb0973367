package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/branch/framework/app"
	"github.com/km-arc/branch/framework/resolver"
	"github.com/km-arc/branch/framework/routing"
)

func routesCmd(boot func() (*app.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered routes in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := registeredRouter(boot)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tURI\tNAME\tACTION\tMIDDLEWARE")
			for _, rt := range router.Routes() {
				methods := "ANY"
				if len(rt.Methods) > 0 {
					methods = strings.Join(rt.Methods, "|")
				}
				mw := make([]string, len(rt.Middleware))
				for i, m := range rt.Middleware {
					mw[i] = describe(m)
				}
				fmt.Fprintf(w, "%s\t/%s\t%s\t%s\t%s\n", methods, rt.Path, rt.Name, describe(rt.Handler), strings.Join(mw, ","))
			}
			return w.Flush()
		},
	}
}

func routeURLCmd(boot func() (*app.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "route:url NAME [key=value...]",
		Short: "Build the URL of a named route",
		Long: `Build the URL of a named route. Parameters that are not route
placeholders are appended as a query string.

Examples:
  branch route:url api.users.show id=42
  branch route:url api.users.show id=42 tab=settings`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]any, len(args)-1)
			for _, arg := range args[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid parameter %q, want key=value", arg)
				}
				params[key] = value
			}

			router, err := registeredRouter(boot)
			if err != nil {
				return err
			}
			u, err := router.URL(args[0], params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "/"+u)
			return nil
		},
	}
}

func registeredRouter(boot func() (*app.Application, error)) (*routing.Router, error) {
	a, err := boot()
	if err != nil {
		return nil, err
	}
	router, err := a.Router()
	if err != nil {
		return nil, err
	}
	if err := router.Register(); err != nil {
		return nil, err
	}
	return router, nil
}

// describe renders a handler or middleware definition for display.
func describe(def resolver.Definition) string {
	switch d := def.(type) {
	case resolver.ClassName:
		return string(d)
	case resolver.ObjectConfig:
		return d.Class
	case resolver.Closure:
		return "Closure"
	case resolver.Literal:
		switch v := d.Value.(type) {
		case routing.Action:
			return fmt.Sprintf("%v@%s", v.Controller, v.Method)
		case string:
			return v
		}
		return fmt.Sprintf("%T", d.Value)
	}
	return fmt.Sprintf("%T", def)
}

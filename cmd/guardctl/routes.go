package main

import (
	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/internal/output"
	"github.com/HandSonic/LLM-Security-Gateway/router"
)

type routeInfo struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
	View string `json:"view" yaml:"view"`
	Href string `json:"href" yaml:"href"`
}

func newRoutesCmd(a *app) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "routes [location]",
		Short: "List the console routes, or resolve a location against them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base") {
				base = a.cfg.BasePath
			}
			table, err := router.Default(base, "Dashboard", "Chat", "Policy")
			if err != nil {
				return err
			}
			var routes []router.Route[string]
			if len(args) == 1 {
				r, err := table.Resolve(args[0])
				if err != nil {
					return err
				}
				routes = append(routes, r)
			} else {
				routes = table.Routes()
			}

			infos := make([]routeInfo, 0, len(routes))
			for _, r := range routes {
				infos = append(infos, routeInfo{Path: r.Path, Name: r.Name, View: r.View, Href: table.Location(r.Path)})
			}
			return a.printer.Emit(infos, func() *output.Table {
				t := output.NewTable("PATH", "NAME", "VIEW", "HREF")
				for _, i := range infos {
					t.AddRow(i.Path, i.Name, i.View, i.Href)
				}
				return t
			})
		},
	}
	cmd.Flags().StringVar(&base, "base", "/", "History base the console is served under (env GUARD_BASE_PATH)")
	return cmd
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/server"
	"github.com/glint-tools/carbon/internal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only HTTP preview of the project",
	Long: `Serves resolved exports of the project over HTTP. The project file is read
again for every request, so the preview follows saves made by any tool.

Routes:
  GET /healthz
  GET /api/project
  GET /api/collections
  GET /api/collections/{collection}
  GET /api/collections/{collection}/objects/{path...}
  GET /api/collections/{collection}/describe/{path...}

Append ?format=yaml to export routes for YAML, or ?format=markdown to describe
routes for the markdown source.`,
	Example:     `  carbon serve --addr 127.0.0.1:8080`,
	Args:        cobra.NoArgs,
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getProjectPath()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !isJSONOutput() {
			printf("%s\n", ui.Successf("Serving %s on http://%s", ui.FilePath(path), serveAddr))
		}
		err := server.Run(ctx, server.Config{
			Addr:   serveAddr,
			Logger: logger,
			Load: func(context.Context) (*project.Project, error) {
				return loadProject(path)
			},
		})
		if err != nil {
			return handleError(ErrServerFailed, err, "")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"shipster/cli/internal/devlobby"
	"shipster/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	lobbyAddr       string
	lobbyGRPCAddr   string
	lobbySecret     string
	lobbyMaxPlayers int
)

var lobbyCmd = &cobra.Command{
	Use:   "lobby",
	Short: "Development lobby commands",
}

// lobbyServeCmd runs a local lobby that answers joins over HTTP, the socket and gRPC.
var lobbyServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local development lobby",
	Long: `The serve command runs a development lobby. It accepts joins on
POST /game/joinLobby, on the /socket WebSocket and on the gRPC Lobby service, and
answers with a player id and a signed token. Stop it with Ctrl+C.`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if flagVerbose {
			level = "debug"
		}
		logger := logging.New(logging.Options{Level: level})

		secret := lobbySecret
		if secret == "" {
			secret = os.Getenv("SHIPSTER_LOBBY_SECRET")
		}
		srv := devlobby.New(devlobby.Options{
			Secret:     []byte(secret),
			MaxPlayers: lobbyMaxPlayers,
			Logger:     logger,
			AccessLog:  cmd.ErrOrStderr(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pterm.Info.Printfln("Lobby on http://%s (gRPC %s)", lobbyAddr, lobbyGRPCAddr)
		return srv.ListenAndServe(ctx, lobbyAddr, lobbyGRPCAddr)
	},
}

func init() {
	lobbyServeCmd.Flags().StringVar(&lobbyAddr, "addr", "localhost:1337", "HTTP and socket listen address")
	lobbyServeCmd.Flags().StringVar(&lobbyGRPCAddr, "grpc-addr", "localhost:50051", "gRPC listen address (empty disables gRPC)")
	lobbyServeCmd.Flags().StringVar(&lobbySecret, "secret", "", "Token signing secret (default $SHIPSTER_LOBBY_SECRET or random)")
	lobbyServeCmd.Flags().IntVar(&lobbyMaxPlayers, "max-players", 0, "Maximum distinct nicks (0 means unlimited)")

	lobbyCmd.AddCommand(lobbyServeCmd)
	rootCmd.AddCommand(lobbyCmd)
}

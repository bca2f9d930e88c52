package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ArteenM/File-Sharing/internal/config"
	"github.com/ArteenM/File-Sharing/internal/logger"
	"github.com/ArteenM/File-Sharing/internal/metrics"
	"github.com/ArteenM/File-Sharing/internal/session"
	signalrelay "github.com/ArteenM/File-Sharing/internal/signal"
	"github.com/ArteenM/File-Sharing/internal/store"
	"github.com/ArteenM/File-Sharing/internal/transport/webrtc"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "wait for incoming transfers",
	Long:  "register with the signaling server and accept incoming file transfers from peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromFlags(cmd)
		log := logger.NewLogger()

		localID, _ := cmd.Flags().GetString("id")
		if localID == "" {
			localID = uuid.NewString()[:8]
		}
		downloadDir, _ := cmd.Flags().GetString("download-dir")

		relay, err := signalrelay.Dial(cfg.SignalAddr, localID, log)
		if err != nil {
			return err
		}
		defer func() { _ = relay.Close() }()

		history, err := store.NewTransferStore(cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}

		var bar *progressbar.ProgressBar
		manager := session.NewManager(session.ManagerOptions{
			LocalID:     localID,
			Transport:   webrtc.New(relay, cfg.STUNServers, log),
			Logger:      log,
			Config:      cfg,
			History:     history,
			DownloadDir: downloadDir,
			Handlers: session.Handlers{
				OnProgress: func(peerID, fileName string, filled, total uint32) {
					if bar == nil || filled == 1 {
						bar = progressbar.Default(int64(total), "receiving "+fileName)
					}
					_ = bar.Set(int(filled))
				},
				OnReceiveComplete: func(peerID, fileName string, payload []byte, m metrics.PerformanceMetrics) {
					bar = nil
					printMetrics(fileName, m)
				},
				OnError: func(peerID string, err error) {
					bar = nil
					log.Errorf("Transfer from %s failed: %v", peerID, err)
				},
			},
		})
		defer func() { _ = manager.Close() }()

		fmt.Printf("Peer ID: %s\n", localID)
		log.Infof("Listening for transfers (encryption %s)", onOff(cfg.Encrypt))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manager.Run(ctx)
		return nil
	},
}

func init() {
	addCommonFlags(listenCmd)
	listenCmd.Flags().String("id", "", "peer identifier to register (random when empty)")
	listenCmd.Flags().String("download-dir", "downloads", "directory for received files")
}

func addCommonFlags(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().String("signal-addr", defaults.SignalAddr, "signaling server address")
	cmd.Flags().Bool("encrypt", false, "encrypt transfers end to end")
	cmd.Flags().Int("chunk-size", defaults.ChunkSize, "chunk size in bytes")
	cmd.Flags().Duration("pace-delay", defaults.PaceDelay, "delay between chunk sends")
	cmd.Flags().StringSlice("stun", defaults.STUNServers, "STUN server URLs")
	cmd.Flags().String("history", defaults.HistoryPath, "transfer history database path")
}

func configFromFlags(cmd *cobra.Command) config.Config {
	cfg := config.Default()
	if v, err := cmd.Flags().GetString("signal-addr"); err == nil {
		cfg.SignalAddr = v
	}
	if v, err := cmd.Flags().GetBool("encrypt"); err == nil {
		cfg.Encrypt = v
	}
	if v, err := cmd.Flags().GetInt("chunk-size"); err == nil && v > 0 {
		cfg.ChunkSize = v
	}
	if v, err := cmd.Flags().GetDuration("pace-delay"); err == nil {
		cfg.PaceDelay = v
	}
	if v, err := cmd.Flags().GetStringSlice("stun"); err == nil && len(v) > 0 {
		cfg.STUNServers = v
	}
	if v, err := cmd.Flags().GetString("history"); err == nil {
		cfg.HistoryPath = v
	}
	return cfg
}

func printMetrics(fileName string, m metrics.PerformanceMetrics) {
	fmt.Printf("%s: %d bytes in %.2fs, %.2f MB/s (latency avg %.1f ms, p95 %.1f ms, p99 %.1f ms)\n",
		fileName, m.BytesTransferred, m.EndTime.Sub(m.StartTime).Seconds(),
		m.ThroughputMBps, m.AvgLatencyMs, m.P95LatencyMs, m.P99LatencyMs)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ArteenM/File-Sharing/internal/logger"
	"github.com/ArteenM/File-Sharing/internal/session"
	signalrelay "github.com/ArteenM/File-Sharing/internal/signal"
	"github.com/ArteenM/File-Sharing/internal/store"
	"github.com/ArteenM/File-Sharing/internal/transport/webrtc"
)

var sendCmd = &cobra.Command{
	Use:   "send file-path peer-id",
	Short: "send a file to a peer",
	Long:  "connect to a listening peer through the signaling server and stream the file to it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, peerID := args[0], args[1]
		cfg := configFromFlags(cmd)
		log := logger.NewLogger()

		payload, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		fileName := filepath.Base(filePath)

		localID := uuid.NewString()[:8]
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
			LocalID:   localID,
			Transport: webrtc.New(relay, cfg.STUNServers, log),
			Logger:    log,
			Config:    cfg,
			History:   history,
			Handlers: session.Handlers{
				OnSendProgress: func(peerID, fileName string, sent, total uint32) {
					if bar == nil {
						bar = progressbar.Default(int64(total), "sending "+fileName)
					}
					_ = bar.Set(int(sent))
				},
			},
		})
		defer func() { _ = manager.Close() }()

		connectTimeout, _ := cmd.Flags().GetDuration("connect-timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
		defer cancel()

		if _, err := manager.Connect(ctx, peerID); err != nil {
			return err
		}

		m, err := manager.SendFile(cmd.Context(), peerID, fileName, payload)
		if err != nil {
			return err
		}
		printMetrics(fileName, m)
		return nil
	},
}

func init() {
	addCommonFlags(sendCmd)
	sendCmd.Flags().Duration("connect-timeout", 30*time.Second, "time allowed to establish the connection")
}

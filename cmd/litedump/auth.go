package main

import (
	"fmt"

	"github.com/semmidev/litedump/internal/app"
	"github.com/semmidev/litedump/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain credentials for upload targets",
	}

	authCmd.AddCommand(newAuthGDriveCmd())

	return authCmd
}

func newAuthGDriveCmd() *cobra.Command {
	var clientSecret, addr, output string

	cmd := &cobra.Command{
		Use:   "gdrive",
		Short: "Authorize Google Drive access and write a credentials file for the gdrive target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New("info", "")
			if err != nil {
				return err
			}
			defer log.Close()

			auth, err := app.NewDriveAuth(log, clientSecret)
			if err != nil {
				return err
			}

			token, err := auth.Serve(cmd.Context(), addr)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			return auth.WriteCredentials(output, token)
		},
	}

	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret JSON downloaded from the Google console")
	cmd.Flags().StringVar(&addr, "addr", "localhost:8085", "address the callback server listens on")
	cmd.Flags().StringVarP(&output, "output", "o", "configs/gdrive-credentials.json", "credentials file to write")
	_ = cmd.MarkFlagRequired("client-secret")

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check server connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			url := viper.GetString("server_url")
			if serverURL != "" {
				url = serverURL
			}

			if err := apiClient.Health(ctx); err != nil {
				fmt.Printf("Server:  %s\n", url)
				fmt.Println("Status:  unreachable")
				return err
			}

			fmt.Printf("Server:  %s\n", url)
			fmt.Println("Status:  healthy")
			return nil
		},
	}
}

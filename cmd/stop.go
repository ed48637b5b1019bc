package cmd

import (
	"fmt"
	"log"

	"github.com/dlukin/scout-responder/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Manage the stop marker that halts a running candidate batch",
}

var stopSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the stop marker; the running batch halts at its next checkpoint",
	Run: func(_ *cobra.Command, _ []string) {
		marker := stopMarker()
		if err := marker.Set(); err != nil {
			log.Fatalf("setting stop marker: %v", err)
		}
		fmt.Println("stop marker set")
	},
}

var stopClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the stop marker so future runs can proceed",
	Run: func(_ *cobra.Command, _ []string) {
		marker := stopMarker()
		if err := marker.Clear(); err != nil {
			log.Fatalf("clearing stop marker: %v", err)
		}
		fmt.Println("stop marker cleared")
	},
}

var stopStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print whether the stop marker is set",
	Run: func(_ *cobra.Command, _ []string) {
		if stopMarker().IsSet() {
			fmt.Println("stop marker is set")
			return
		}
		fmt.Println("stop marker is not set")
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
	stopCmd.AddCommand(stopSetCmd, stopClearCmd, stopStatusCmd)

	stopCmd.PersistentFlags().String("stop-file", "", "path to the stop marker file")
	viper.BindPFlag("store.stop-file", stopCmd.PersistentFlags().Lookup("stop-file"))
}

func stopMarker() *store.StopMarker {
	// The stop command works without a config file; read one when present
	// so the marker path matches the running batch.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}
	_ = viper.ReadInConfig()

	path := viper.GetString("store.stop-file")
	if path == "" {
		path = defaultStopFile
	}

	return store.NewStopMarker(path)
}

package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/helmdeck/helmdeck/pkg/apiserver"
	"github.com/helmdeck/helmdeck/pkg/config"
	"github.com/helmdeck/helmdeck/pkg/k8sutil"
	"github.com/helmdeck/helmdeck/pkg/logger"
)

func APICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "api",
		Short:        "Starts the API server",
		Long:         ``,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			helmdeckConfig := new(config.HelmdeckConfig)
			if configFilePath := v.GetString("config-file"); configFilePath != "" {
				configFile, err := os.ReadFile(configFilePath)
				if err != nil {
					return errors.Wrap(err, "failed to read config file")
				}

				if helmdeckConfig, err = config.ParseHelmdeckConfig(configFile); err != nil {
					return errors.Wrap(err, "failed to parse config file")
				}
			}

			// flags win over the config file
			if listen := v.GetString("listen"); listen != "" {
				helmdeckConfig.ListenAddr = listen
			}
			if namespace := v.GetString("namespace"); namespace != "" {
				helmdeckConfig.Namespace = namespace
			}
			if v.GetBool("all-namespaces") {
				helmdeckConfig.AllNamespaces = true
			}
			if helmDriver := v.GetString("helm-driver"); helmDriver != "" {
				helmdeckConfig.HelmDriver = helmDriver
			}
			if cachePath := v.GetString("schema-cache-path"); cachePath != "" {
				helmdeckConfig.SchemaCachePath = cachePath
			}

			if v.GetString("log-level") == "debug" || helmdeckConfig.LogLevel == "debug" {
				logger.SetDebug()
			}

			params := apiserver.APIServerParams{
				Context: cmd.Context(),
				Config:  helmdeckConfig,
			}
			apiserver.Start(params)

			return nil
		},
	}

	cmd.Flags().String("config-file", "", "path to the helmdeck config file")
	cmd.Flags().String("listen", "", "address to listen on")
	cmd.Flags().String("namespace", "", "the namespace to list releases from")
	cmd.Flags().Bool("all-namespaces", false, "list releases across all namespaces")
	cmd.Flags().String("helm-driver", "", "helm storage driver (secret, configmap, memory)")
	cmd.Flags().String("schema-cache-path", "", "path to the chart schema cache database")

	k8sutil.AddFlags(cmd.Flags())

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return cmd
}

package cmd

import (
	"fmt"
	"go_redis_proxy/config"
	"go_redis_proxy/lib/logger"
	"go_redis_proxy/resp/handler"
	"go_redis_proxy/stats"
	"go_redis_proxy/tcp"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "redis-proxy",
	Short: "sharded redis proxy with command splitting",
	Long: `A proxy that sits in front of a set of redis nodes. Single-key
commands are routed by consistent hashing; MGET/MSET are split into
per-node fragments and the replies folded back into one response.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Setup(&logger.Settings{
			Path:       "logs",
			Name:       "redis-proxy",
			Ext:        "log",
			TimeFormat: "2006-01-02",
		})
		config.SetupConfig(cfgFile)

		scope := stats.MakeScope()
		if config.Properties.MetricsPort > 0 {
			registry := prometheus.NewRegistry()
			scope = stats.MakePromScope(registry)
			go serveMetrics(config.Properties.MetricsPort, registry)
		}

		err := tcp.ListenAndServeWithSignal(&tcp.Config{
			Address: fmt.Sprintf("%s:%d", config.Properties.Bind, config.Properties.Port),
		}, handler.MakeHandler(scope))
		if err != nil {
			logger.Error(err)
		}
	},
}

func serveMetrics(port int, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics listening on " + addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error(err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(64)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./proxy.yaml)")

	rootCmd.PersistentFlags().StringP("bind", "b", "0.0.0.0", "address to bind to")
	_ = viper.BindPFlag("bind", rootCmd.PersistentFlags().Lookup("bind"))

	rootCmd.PersistentFlags().IntP("port", "p", 6380, "port to listen on")
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))

	rootCmd.PersistentFlags().StringSlice("peers", nil, "upstream redis nodes, host:port")
	_ = viper.BindPFlag("peers", rootCmd.PersistentFlags().Lookup("peers"))

	rootCmd.PersistentFlags().Int("metrics-port", 0, "port for prometheus /metrics, 0 to disable")
	_ = viper.BindPFlag("metrics-port", rootCmd.PersistentFlags().Lookup("metrics-port"))
}

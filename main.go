package main

import (
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pranavmehta/index-datastore/src/dataservices"
	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/loader"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/router"
	"github.com/pranavmehta/index-datastore/src/utils"
)

type RunArgs struct {
	ConfigFile string
}

var runCmd = &cobra.Command{
	Use:   "index-datastore --config config.yaml",
	Short: "Load the historical dataset and serve back-test queries",
	Run: func(cmd *cobra.Command, args []string) {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		if err := Run(RunArgs{ConfigFile: configFile}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		return err
	}

	cfg, err := marketmodels.NewAppConfigYAML(args.ConfigFile)
	if err != nil {
		return err
	}

	sessionOpen, err := utils.HMSToSeconds(cfg.MarketOpen)
	if err != nil {
		return err
	}

	classifier := expiries.NewClassifier()
	store := datastore.NewQuoteStore(classifier)

	report, err := loader.NewLoader(cfg.DatasetDir, cfg.LoadPlanFile, store).Load()
	if err != nil {
		return err
	}

	report.RenderTable(os.Stdout)

	accessor := dataservices.NewAccessor(store, classifier, sessionOpen, cfg.DateSearchHorizon)

	r := router.Setup(accessor)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Infof("listening on :%s", port)
	return http.ListenAndServe(":"+port, r)
}

func main() {
	runCmd.PersistentFlags().String("config", "config.yaml", "path to the YAML application config")

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("error executing run command: %v", err)
	}
}

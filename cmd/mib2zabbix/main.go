// Command mib2zabbix generates a Zabbix template (YAML export) from an SNMP
// MIB module, using net-snmp's snmptranslate as the MIB parser.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mibkit/mib2zabbix/internal/classify"
	"github.com/mibkit/mib2zabbix/internal/template"
	"github.com/mibkit/mib2zabbix/internal/translate"
)

func main() {
	// Configuration flags
	mibFile := flag.String("mib-file", "", "Path to the MIB file (required)")
	module := flag.String("module", "", "MIB module name, e.g. SNMPv2-MIB (required)")
	output := flag.String("output", "template.yaml", "Output YAML file path")
	templateName := flag.String("template-name", "", "Template name (default: <module> SNMP)")
	group := flag.String("group", "Templates", "Template group name")
	checkDelay := flag.String("check-delay", "1h", "Polling interval for items")
	discDelay := flag.String("disc-delay", "1h", "Polling interval for discovery rules")
	history := flag.String("history", "30d", "History retention")
	trends := flag.String("trends", "0", "Trend retention for numeric items")
	timeoutScale := flag.Float64("timeout-scale", 1.0, "Multiplier for snmptranslate timeouts")
	flag.Parse()

	// Optional .env for SNMPTRANSLATE and LOG_LEVEL overrides
	_ = godotenv.Load()
	configureLogging()

	if *mibFile == "" || *module == "" {
		fmt.Fprintln(os.Stderr, "both -mib-file and -module are required")
		flag.Usage()
		os.Exit(2)
	}

	opts := options{
		mibFile:      *mibFile,
		module:       *module,
		output:       *output,
		timeoutScale: *timeoutScale,
		params: template.Params{
			Module:         *module,
			TemplateName:   *templateName,
			Group:          *group,
			CheckDelay:     *checkDelay,
			DiscoveryDelay: *discDelay,
			History:        *history,
			Trends:         *trends,
		},
	}

	if err := run(context.Background(), opts); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

type options struct {
	mibFile      string
	module       string
	output       string
	timeoutScale float64
	params       template.Params
}

func run(ctx context.Context, opts options) error {
	translator := translate.NewSnmpTranslate(opts.mibFile, opts.module)
	translator.TimeoutScale = opts.timeoutScale

	if err := translator.LoadModule(ctx); err != nil {
		if errors.Is(err, translate.ErrTranslatorNotFound) {
			return fmt.Errorf("%w (install net-snmp or set SNMPTRANSLATE)", err)
		}
		return err
	}
	logrus.Infof("MIB %q loaded from %q", opts.module, opts.mibFile)

	symbols, err := translator.Symbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols found in module %s", opts.module)
	}
	logrus.Infof("Found %d symbols in the MIB", len(symbols))

	processor := &classify.Processor{Translator: translator}
	records := processor.Run(ctx, symbols)
	if len(records) == 0 {
		return fmt.Errorf("no symbols from module %s classified successfully", opts.module)
	}

	export := template.Build(opts.params, records)

	if err := template.WriteFile(opts.output, export); err != nil {
		return err
	}
	logrus.Infof("Template written to %s", opts.output)
	if n := len(export.ZabbixExport.ValueMaps); n > 0 {
		logrus.Infof("Generated %d value maps", n)
	}
	return nil
}

func configureLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		logrus.SetLevel(lvl)
	}
}

package plugins

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/kilianp07/railfleet/config"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
)

func decodeLogging(conf map[string]any) (config.LoggingConfig, error) {
	var lc config.LoggingConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &lc,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return lc, err
	}
	return lc, dec.Decode(conf)
}

func init() {
	RegisterLogStore("jsonl", func(name string, conf map[string]any) (schedlog.LogStore, error) {
		lc, err := decodeLogging(conf)
		if err != nil {
			return nil, err
		}
		return schedlog.NewJSONLStore(lc.Path)
	})
	RegisterLogStore("rotating", func(name string, conf map[string]any) (schedlog.LogStore, error) {
		lc, err := decodeLogging(conf)
		if err != nil {
			return nil, err
		}
		return schedlog.NewRotatingJSONLStore(lc.Path, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
	})
	RegisterLogStore("sqlite", func(name string, conf map[string]any) (schedlog.LogStore, error) {
		lc, err := decodeLogging(conf)
		if err != nil {
			return nil, err
		}
		return schedlog.NewSQLiteStore(lc.Path)
	})
}

package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/armadaproject/fairdiv/internal/fairness/report"
)

// CustomHooks replaces viper's default decode hooks, so the defaults are composed in here too.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		ReportFormatHookFunc(),
	)),
}

// ReportFormatHookFunc decodes strings into report.Format, rejecting unknown formats.
func ReportFormatHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		// check that src and target types are valid
		if f.Kind() != reflect.String || t != reflect.TypeOf(report.FormatText) {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return report.ParseFormat(s)
	}
}

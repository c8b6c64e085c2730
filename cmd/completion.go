package cmd

import (
	"flag"

	"github.com/etnz/flagship"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagValues predicts the values of flags with a closed set of values.
var flagValues = map[string]complete.Predictor{
	"brand":    brands(),
	"storage":  storages(),
	"lang":     predict.Set{string(flagship.Russian), string(flagship.English)},
	"theme":    predict.Set{string(flagship.Light), string(flagship.Dark)},
	"autosync": predict.Set{"on", "off"},
	"data-dir": predict.Dirs("*"),
}

func brands() predict.Set {
	var s predict.Set
	for _, b := range flagship.Brands {
		s = append(s, string(b))
	}
	return s
}

func storages() predict.Set {
	var s predict.Set
	for _, v := range flagship.StorageSizes {
		s = append(s, string(v))
	}
	return s
}

// flagPredictors predicts every flag of a flag set.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := flagValues[fl.Name]; ok {
			flags[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		flags[fl.Name] = predict.Something
	})
	return flags
}

// Completion returns the shell completion of fsh, with global flags read
// from global.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(global),
	}
	for _, g := range Groups {
		for _, c := range g.Commands {
			f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(f)
			root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(f)}
		}
	}
	return root
}

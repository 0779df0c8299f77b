// Command ddc-probe enumerates DDC/CI displays and reads a few common
// features from each, as a quick health check of the bus.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/ddc"
	"github.com/BeatGlow/ddc/conn"
	"github.com/BeatGlow/ddc/vcp"
)

func main() {
	capsFlag := flag.Bool("caps", false, "also fetch the raw capability string")
	verboseFlag := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verboseFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	displays, err := ddc.ListDisplays(conn.SystemRegistry{})
	if err != nil {
		fatal(err)
	}
	if len(displays) == 0 {
		fmt.Println("no external displays found")
		return
	}

	reg := vcp.NewRegistry()
	probes := []string{"luminance", "contrast", "input_source"}

	for _, d := range displays {
		if *verboseFlag {
			d.SetLogger(log.Logger)
		}
		fmt.Printf("%s\n", d)
		fmt.Printf("  path: %s\n", d.RegistryPath)

		for _, name := range probes {
			com, ok := reg.CommandNamed(name)
			if !ok {
				continue
			}
			ret, err := d.GetFeature(com)
			if err != nil {
				fmt.Printf("  %s: %v\n", name, err)
				continue
			}
			if com.Discrete() {
				fmt.Printf("  %s: %d\n", name, ret.Current)
			} else {
				fmt.Printf("  %s: %d/%d\n", name, ret.Current, ret.Max)
			}
		}

		if *capsFlag {
			raw, err := d.RawCapabilities()
			if err != nil {
				fmt.Printf("  capabilities: %v\n", err)
				continue
			}
			fmt.Printf("  capabilities: %s\n", raw)
		}
	}
}

func fatal(err error) {
	log.Error().Msg(err.Error())
	os.Exit(1)
}

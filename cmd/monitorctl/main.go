// Command monitorctl bosses DDC/CI displays around: list them, read, set
// and toggle their features, and dump their capability strings.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/ddc"
	"github.com/BeatGlow/ddc/caps"
	"github.com/BeatGlow/ddc/conn"
	"github.com/BeatGlow/ddc/internal/config"
	"github.com/BeatGlow/ddc/vcp"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [arguments]

Commands:
  list                                  list available monitors
  get  <feature> <monitor>...           read a feature value
  set  <feature> <value> <monitor>...   write a feature value
  tog  <feature> <a> <b> <monitor>...   toggle a feature between two values
  caps [-r] [-s] <monitor>              show monitor capabilities

Features are addressed by name (e.g. luminance) or code (e.g. 16), monitors
by configured alias or location index.

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configFlag := flag.String("config", config.DefaultPath, "configuration file path")
	verboseFlag := flag.Bool("v", false, "enable debug logging")
	flag.Usage = usage
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verboseFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadOrDefault(*configFlag)
	if err != nil {
		fatal(err)
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	a := &app{
		cfg:    cfg,
		reg:    vcp.NewRegistry(),
		policy: cfg.Retry.Policy(),
	}

	args := flag.Args()[1:]
	switch cmd := flag.Arg(0); cmd {
	case "list":
		err = a.list()
	case "get":
		err = a.get(args)
	case "set":
		err = a.set(args)
	case "tog":
		err = a.toggle(args)
	case "caps":
		err = a.caps(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	log.Error().Msg(err.Error())
	os.Exit(1)
}

type app struct {
	cfg      config.Config
	reg      *vcp.Registry
	policy   ddc.RetryPolicy
	displays []*ddc.Display
}

func (a *app) enumerate() ([]*ddc.Display, error) {
	if a.displays == nil {
		displays, err := ddc.ListDisplays(conn.SystemRegistry{})
		if err != nil {
			return nil, err
		}
		for _, d := range displays {
			d.SetRetryPolicy(a.policy)
			d.SetLogger(log.Logger)
		}
		a.displays = displays
	}
	return a.displays, nil
}

// display resolves a monitor alias or location index to a handle.
func (a *app) display(name string) (*ddc.Display, error) {
	displays, err := a.enumerate()
	if err != nil {
		return nil, err
	}

	index, ok := a.cfg.Monitors[name]
	if !ok {
		if index, err = strconv.Atoi(name); err != nil {
			return nil, fmt.Errorf("%s is not a monitor alias or index; valid aliases: %s",
				name, strings.Join(sortedKeys(a.cfg.Monitors), ", "))
		}
	}
	for _, d := range displays {
		if d.Index == index {
			return d, nil
		}
	}
	return nil, fmt.Errorf("monitor #%d does not exist", index)
}

// feature resolves a feature name or code to a command descriptor.
func (a *app) feature(name string) (*vcp.Command, error) {
	if code, err := strconv.Atoi(name); err == nil {
		if code < 0 || code > 255 {
			return nil, fmt.Errorf("%d is not a valid feature code", code)
		}
		if com, ok := a.reg.Command(byte(code)); ok {
			return com, nil
		}
		return nil, fmt.Errorf("%d is not a known feature code", code)
	}
	if com, ok := a.reg.CommandNamed(name); ok {
		return com, nil
	}
	return nil, fmt.Errorf("%s is not a known feature name", name)
}

// value resolves a parameter name, input alias or plain number. A
// particular monitor will support only some of the named values; check its
// capability string.
func (a *app) value(com *vcp.Command, s string) (uint16, error) {
	if com.Code == vcp.CodeInputSource {
		if code, ok := a.cfg.Inputs[s]; ok {
			return code, nil
		}
	}
	if code, ok := com.Params[s]; ok {
		return code, nil
	}

	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		valid := com.ParamNames()
		if com.Code == vcp.CodeInputSource {
			valid = append(valid, sortedKeys(a.cfg.Inputs)...)
		}
		if len(valid) > 0 {
			return 0, fmt.Errorf("%s is not a valid %s value; valid values: %s, or a non-negative number",
				s, com.Name, strings.Join(valid, ", "))
		}
		return 0, fmt.Errorf("%s is not a valid %s value; valid values are non-negative numbers", s, com.Name)
	}
	return uint16(v), nil
}

func (a *app) list() error {
	displays, err := a.enumerate()
	if err != nil {
		return err
	}
	for _, d := range displays {
		fmt.Println(a.monitorStr(d))
	}
	return nil
}

func (a *app) get(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: get <feature> <monitor>...")
	}
	com, err := a.feature(args[0])
	if err != nil {
		return err
	}

	for i, name := range args[1:] {
		if i > 0 {
			// Sequential with a delay on purpose; see package ddc.
			time.Sleep(a.cfg.WaitDuration())
		}
		d, err := a.display(name)
		if err != nil {
			return err
		}
		ret, err := d.GetFeature(com)
		if err != nil {
			return err
		}
		out := fmt.Sprintf("%s for %s is %s", featureStr(com), a.monitorStr(d), a.valueStr(com, ret.Current))
		if !com.Discrete() {
			out += fmt.Sprintf(" (maximum: %d)", ret.Max)
		}
		fmt.Println(out)
	}
	return nil
}

func (a *app) set(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: set <feature> <value> <monitor>...")
	}
	com, err := a.feature(args[0])
	if err != nil {
		return err
	}
	value, err := a.value(com, args[1])
	if err != nil {
		return err
	}

	for i, name := range args[2:] {
		if i > 0 {
			time.Sleep(a.cfg.WaitDuration())
		}
		d, err := a.display(name)
		if err != nil {
			return err
		}
		if err := d.SetFeature(com, value); err != nil {
			return err
		}
		fmt.Printf("set %s for %s to %s\n", featureStr(com), a.monitorStr(d), a.valueStr(com, value))
	}
	return nil
}

func (a *app) toggle(args []string) error {
	if len(args) < 4 {
		return errors.New("usage: tog <feature> <value1> <value2> <monitor>...")
	}
	com, err := a.feature(args[0])
	if err != nil {
		return err
	}
	v1, err := a.value(com, args[1])
	if err != nil {
		return err
	}
	v2, err := a.value(com, args[2])
	if err != nil {
		return err
	}

	for i, name := range args[3:] {
		if i > 0 {
			time.Sleep(a.cfg.WaitDuration())
		}
		d, err := a.display(name)
		if err != nil {
			return err
		}
		tog, err := d.ToggleFeature(com, v1, v2)
		if err != nil {
			return err
		}
		fmt.Printf("toggled %s for %s from %s to %s\n",
			featureStr(com), a.monitorStr(d), a.valueStr(com, tog.Old), a.valueStr(com, tog.New))
	}
	return nil
}

func (a *app) caps(args []string) error {
	fs := flag.NewFlagSet("caps", flag.ExitOnError)
	rawFlag := fs.Bool("r", false, "print the raw, unparsed capability string")
	summaryFlag := fs.Bool("s", false, "print an abridged summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: caps [-r] [-s] <monitor>")
	}

	d, err := a.display(fs.Arg(0))
	if err != nil {
		return err
	}
	raw, err := d.RawCapabilities()
	if err != nil {
		return err
	}
	if *rawFlag {
		fmt.Println(raw)
		return nil
	}

	doc, err := caps.Parse(raw)
	if err != nil {
		return err
	}
	if *summaryFlag {
		a.printSummary(d, doc)
		return nil
	}
	a.printDocument(doc)
	return nil
}

func (a *app) printDocument(doc *caps.Document) {
	if doc.Type != "" {
		fmt.Printf("type: %s\n", doc.Type)
	}
	if doc.Model != "" {
		fmt.Printf("model: %s\n", doc.Model)
	}
	for _, g := range doc.Groups {
		fmt.Printf("%s:\n", g.Name)
		for _, e := range g.Entries {
			fmt.Printf("  - %s\n", a.entryStr(g, e))
		}
	}
}

// printSummary condenses the document to the identity line plus the
// enumerable features most worth knowing about.
func (a *app) printSummary(d *ddc.Display, doc *caps.Document) {
	line := a.monitorStr(d) + ":"
	if doc.Type != "" {
		line += " " + doc.Type
	}
	if doc.Model != "" {
		if doc.Type != "" {
			line += ","
		}
		line += " model " + doc.Model
	}
	fmt.Println(line)

	for _, g := range doc.Groups {
		if !strings.HasPrefix(strings.ToLower(g.Name), "vcp") {
			continue
		}
		for _, e := range g.Entries {
			if e.IsOpaque() {
				continue
			}
			if e.Code != vcp.CodeInputSource && e.Code != vcp.CodeColorPreset {
				continue
			}
			fmt.Printf("  - %s\n", a.entryStr(g, e))
		}
	}
}

// entryStr renders a group entry, replacing numeric codes and values with
// registry names where the group is a command or feature list. Unknown
// codes stay numeric.
func (a *app) entryStr(g caps.Group, e caps.Entry) string {
	if e.IsOpaque() {
		return e.Opaque
	}

	lower := strings.ToLower(g.Name)
	enrich := strings.HasPrefix(lower, "vcp") || strings.HasPrefix(lower, "cmd")

	var com *vcp.Command
	name := strconv.Itoa(e.Code)
	if enrich && e.Code <= 255 {
		if c, ok := a.reg.Command(byte(e.Code)); ok {
			com = c
			name = featureStr(com)
		}
	}
	if len(e.Values) == 0 {
		return name
	}

	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		if com != nil {
			values[i] = a.valueStr(com, uint16(v))
		} else {
			values[i] = strconv.Itoa(v)
		}
	}
	return fmt.Sprintf("%s: %s", name, strings.Join(values, ", "))
}

func featureStr(com *vcp.Command) string {
	return fmt.Sprintf("%s (%d)", com.Description, com.Code)
}

func (a *app) monitorStr(d *ddc.Display) string {
	out := fmt.Sprintf("monitor #%d", d.Index)
	if d.ProductName != "" {
		out += " " + d.ProductName
	}

	var aliases []string
	for _, name := range sortedKeys(a.cfg.Monitors) {
		if a.cfg.Monitors[name] == d.Index {
			aliases = append(aliases, name)
		}
	}
	if len(aliases) > 0 {
		out += fmt.Sprintf(" (%s)", strings.Join(aliases, ", "))
	}
	return out
}

func (a *app) valueStr(com *vcp.Command, value uint16) string {
	var names []string
	if name, ok := com.ParamName(value); ok {
		names = append(names, name)
	}
	if com.Code == vcp.CodeInputSource {
		for _, alias := range sortedKeys(a.cfg.Inputs) {
			if a.cfg.Inputs[alias] == value {
				names = append(names, alias)
			}
		}
	}
	if len(names) == 0 {
		return strconv.Itoa(int(value))
	}
	return fmt.Sprintf("%d (%s)", value, strings.Join(names, " | "))
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

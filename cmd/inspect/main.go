package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"vr-vddc-renderer/internal/config"
	"vr-vddc-renderer/internal/distortion"
	"vr-vddc-renderer/internal/eyes"
	"vr-vddc-renderer/internal/headset"
	"vr-vddc-renderer/internal/log"
	"vr-vddc-renderer/internal/mathutil"
	"vr-vddc-renderer/internal/viewport"
)

func main() {
	list := flag.Bool("list", false, "List headset presets and exit")
	samples := flag.Int("samples", 8, "Number of radii in the deviation table")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	if *list {
		fmt.Println(strings.Join(headset.PresetNames(), "\n"))
		return
	}

	name := "cardboard-v1"
	if flag.NArg() > 0 {
		name = flag.Arg(0)
	}

	var (
		params headset.Params
		err    error
	)
	if config.IsProfilePath(name) {
		params, err = headset.Load(name)
	} else {
		params, err = headset.Preset(name)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	state := eyes.New(log.L())
	if err := state.Update(params); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Headset: %s\n", name)
	fmt.Println(params.String())
	fmt.Print(state.String())

	forward := params.Distortion()
	cal := state.Calibration()
	fmt.Println()
	fmt.Printf("Forward:  %s\n", forward)
	fmt.Printf("Inverse:  %s\n", cal.Inverse)
	fmt.Printf("MaxRadiusSquared: %.2f (steps=%d, degenerate=%v)\n", cal.MaxRadiusSquared, cal.Steps, cal.Degenerate)

	// Fitted inverse vs iterative inverse across the trusted region
	maxR := math.Sqrt(cal.MaxRadiusSquared)
	n := max(*samples, 2)
	fmt.Println()
	fmt.Println("  radius   distorted  deviation")
	for i := 0; i < n; i++ {
		r := maxR * float64(i) / float64(n-1)
		fmt.Printf("  %6.3f   %9.4f  %9.6f\n", r, forward.DistortRadius(r), distortion.Deviation(r, forward, cal.Inverse))
	}

	// Where the screen corners land in the undistorted image
	data := state.Undistortion()
	fmt.Println()
	for _, eye := range viewport.Eyes {
		fmt.Printf("%s eye corners:\n", eye)
		for _, c := range []mathutil.Vec2{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}, {0, 0}} {
			u := data.UndistortedNDCForDistortedNDC(c, eye)
			fmt.Printf("  (%+.0f,%+.0f) -> (%+.4f,%+.4f) visible=%v\n", c[0], c[1], u[0], u[1], data.VisibleThroughLens(c, eye))
		}
	}
}

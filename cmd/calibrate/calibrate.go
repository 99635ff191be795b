package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/tigerbot-team/patrolbot/pkg/config"
	"github.com/tigerbot-team/patrolbot/pkg/hardware"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
)

var (
	cfgPath  = flag.String("config", config.DefaultPath, "config file")
	distance = flag.Uint("distance", 1000, "straight line test distance (mm)")
	angle    = flag.Uint("angle", 360, "turn test angle (degrees)")
)

var scanner *bufio.Scanner

func init() {
	scanner = bufio.NewScanner(os.Stdin)
}

func readMeasurement(prompt string) float64 {
	fmt.Println(prompt)
	for {
		if !scanner.Scan() {
			panic(scanner.Err())
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			fmt.Printf("error: %v, please try again:\n", err)
			continue
		}
		if v <= 0 {
			fmt.Println("Must be positive, please try again:")
			continue
		}
		return v
	}
}

func main() {
	flag.Parse()
	fmt.Println("---- Movement Calibration ----")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("Bad config:", err)
		os.Exit(1)
	}
	// Calibration runs must never give up on a slow wheel.
	cfg.Motion.StallTimeout = 0

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hw, err := hardware.New(cfg.Hardware, nil)
	if err != nil {
		fmt.Println("Failed to open hardware:", err)
		os.Exit(1)
	}
	defer func() {
		fmt.Println("Zeroing motors for shut down")
		hw.Shutdown()
		time.Sleep(100 * time.Millisecond)
	}()
	if err := hw.Start(ctx); err != nil {
		fmt.Println("Failed to start hardware:", err)
		return
	}
	if err := hw.SetVelocity(cfg.Patrol.Cruise.Left, cfg.Patrol.Cruise.Right); err != nil {
		fmt.Println("Failed to set velocity:", err)
		return
	}

	d := motion.NewDriver(hw.DirectionPort(), hw.Encoders(), hw, cfg.Motion)

	fmt.Printf("Driving forward %dmm...\n", *distance)
	if err := d.ForwardMM(*distance); err != nil {
		fmt.Println("Move failed:", err)
		return
	}
	// Let the robot coast to a halt before reading the counts.
	time.Sleep(500 * time.Millisecond)
	l, r := hw.Encoders().Read()
	fmt.Printf("Pulses: left=%d right=%d\n", l, r)
	mm := readMeasurement("Enter measured straight ahead displacement (mm):")
	fmt.Printf("mm_per_pulse: %.3f (configured %.3f)\n", mm/float64(r), cfg.Motion.MMPerPulse)

	fmt.Printf("Turning right %d degrees...\n", *angle)
	if err := d.RightDegrees(*angle); err != nil {
		fmt.Println("Turn failed:", err)
		return
	}
	time.Sleep(500 * time.Millisecond)
	l, r = hw.Encoders().Read()
	fmt.Printf("Pulses: left=%d right=%d\n", l, r)
	deg := readMeasurement("Enter measured rotation (degrees):")
	pulses := float64(l+r) / 2
	fmt.Printf("degrees_per_pulse: %.3f (configured %.3f)\n", deg/pulses, cfg.Motion.DegreesPerPulse)
}

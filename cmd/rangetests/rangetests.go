package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tigerbot-team/patrolbot/pkg/config"
	"github.com/tigerbot-team/patrolbot/pkg/gp2d12"
	"github.com/tigerbot-team/patrolbot/pkg/hardware"
)

var cfgPath = flag.String("config", config.DefaultPath, "config file")

func main() {
	flag.Parse()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("Bad config:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hw, err := hardware.New(cfg.Hardware, nil)
	if err != nil {
		fmt.Println("Failed to open hardware ", err)
		os.Exit(1)
	}
	defer hw.Shutdown()
	if err := hw.Start(ctx); err != nil {
		fmt.Println("Failed to start hardware ", err)
		return
	}

	sensor := gp2d12.NewSensor(hw, cfg.Patrol.SensorChannel)
	d := cfg.Patrol.Display
	for range time.NewTicker(250 * time.Millisecond).C {
		code, mm, err := sensor.Read()
		if err != nil {
			fmt.Println("Failed to read sensor ", err)
			return
		}
		hw.Print(d.Row, d.Col, mm, d.Width)
		l, r := hw.Encoders().Read()
		fmt.Printf("code=%3d distance=%3dmm encoders L=%d R=%d\n", code, mm, l, r)
	}
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tigerbot-team/patrolbot/pkg/config"
	"github.com/tigerbot-team/patrolbot/pkg/hardware"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
)

var cfgPath = flag.String("config", config.DefaultPath, "config file")

func main() {
	flag.Parse()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("Bad config:", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hw, err := hardware.New(cfg.Hardware, nil)
	if err != nil {
		fmt.Println("Failed to open hardware", err)
		return
	}
	defer hw.Shutdown()
	if err := hw.Start(ctx); err != nil {
		fmt.Println("Failed to start hardware", err)
		return
	}
	d := motion.NewDriver(hw.DirectionPort(), hw.Encoders(), hw, cfg.Motion)

	fmt.Println(
		`Commands:
    v <left> <right>      # Set PWM duties 0-255
    d <direction>         # Set wheel directions and leave them running
    m <direction> <n>     # Encoder-gated move: n mm straight or n degrees turning
    e                     # Print encoder counts

<direction>  forward, back, left, right, soft-left, soft-right,
             reverse-soft-left, reverse-soft-right, stop`)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "v":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			l, errL := strconv.ParseUint(parts[1], 10, 8)
			r, errR := strconv.ParseUint(parts[2], 10, 8)
			if errL != nil || errR != nil {
				fmt.Println("Expected two duties 0-255")
				continue
			}
			fmt.Printf("Setting velocity L=%d R=%d\n", l, r)
			if err := hw.SetVelocity(uint8(l), uint8(r)); err != nil {
				fmt.Println("Failed to write to PCA9685: ", err)
				return
			}
		case "d":
			if len(parts) < 2 {
				fmt.Println("Not enough parameters")
				continue
			}
			dir, err := motion.ParseDirection(parts[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := d.Go(dir); err != nil {
				fmt.Println("Failed to set direction: ", err)
				return
			}
		case "m":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			dir, err := motion.ParseDirection(parts[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			n, err := strconv.ParseUint(parts[2], 10, 32)
			if err != nil {
				fmt.Println("Expected int, not ", parts[2])
				continue
			}
			if dir.IsTurn() {
				err = d.Rotate(dir, uint(n))
			} else {
				err = d.Travel(dir, uint(n))
			}
			if err != nil {
				fmt.Println("Move failed: ", err)
			}
			l, r := hw.Encoders().Read()
			fmt.Printf("Encoders L=%d R=%d\n", l, r)
		case "e":
			l, r := hw.Encoders().Read()
			fmt.Printf("Encoders L=%d R=%d\n", l, r)
		default:
			fmt.Println("Unknown command", parts[0])
		}
	}
}

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
	"github.com/tigerbot-team/patrolbot/pkg/screen"
	"github.com/tigerbot-team/patrolbot/pkg/serlcd"
)

var cfgPath = flag.String("config", config.DefaultPath, "config file")

func main() {
	flag.Parse()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("Bad config:", err)
		return
	}
	dc := cfg.Hardware.Display
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var display hardware.Display
	switch dc.Kind {
	case hardware.DisplaySerial:
		lcd, err := serlcd.Open(dc.Device, dc.Baud, dc.Rows, dc.Cols)
		if err != nil {
			fmt.Println("Failed to open LCD", err)
			return
		}
		defer lcd.Close()
		display = lcd
	default:
		txt := screen.NewText(dc.Rows, dc.Cols)
		go screen.LoopUpdatingScreen(ctx, dc.Device, txt)
		display = txt
	}

	fmt.Println("Enter <row> <col> <value> <width>")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) != 4 {
			fmt.Println("Expected 4 numbers")
			continue
		}
		var n [4]int
		for i, p := range parts {
			if n[i], err = strconv.Atoi(p); err != nil {
				break
			}
		}
		if err != nil {
			fmt.Println("Expected int: ", err)
			continue
		}
		display.Print(n[0], n[1], n[2], n[3])
	}
}

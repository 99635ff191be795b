package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tigerbot-team/patrolbot/pkg/config"
	"github.com/tigerbot-team/patrolbot/pkg/gp2d12"
	"github.com/tigerbot-team/patrolbot/pkg/hardware"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
	"github.com/tigerbot-team/patrolbot/pkg/patrol"
	"github.com/tigerbot-team/patrolbot/pkg/pose"
	"github.com/tigerbot-team/patrolbot/pkg/reroute"
	"github.com/tigerbot-team/patrolbot/pkg/sound"
)

var (
	cfgPath = flag.String("config", config.DefaultPath, "config file")
	inUse   = flag.String("in-use", config.InUsePath, "where to record the config in use; empty to skip")
	sim     = flag.Bool("sim", false, "run against the simulator instead of the robot")
)

func main() {
	flag.Parse()
	fmt.Println("---- Patrolbot ----")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("Bad config:", err)
		os.Exit(1)
	}
	if *inUse != "" {
		if err := config.WriteInUse(cfg, *inUse); err != nil {
			fmt.Println(err)
		}
	}

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	hw, err := openHardware(cfg)
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

	driver := motion.NewDriver(hw.DirectionPort(), hw.Encoders(), hw, cfg.Motion)
	maneuver := reroute.New(cfg.Reroute, driver, hw)
	ranger := gp2d12.NewSensor(hw, cfg.Patrol.SensorChannel)
	p := patrol.New(cfg.Patrol, hw, ranger, driver, maneuver)

	fmt.Printf("----- %s -----\n", p.Name())
	p.Start(ctx)

	watchdog := time.NewTicker(5 * time.Second)
	defer watchdog.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("Context done, stopping patrol and shutting down")
			p.Stop()
			return
		case <-p.Done():
			if err := p.Err(); err != nil {
				fmt.Println("Patrol failed:", err)
				hw.Shutdown()
				os.Exit(2)
			}
			return
		case <-watchdog.C:
			fmt.Printf("Main loop still running: %v, leg %d, %d ticks left, %dmm\n",
				p.State(), p.Leg(), p.Remaining(), p.LastDistanceMM())
		}
	}
}

func openHardware(cfg config.Config) (hardware.Interface, error) {
	if *sim {
		s := hardware.NewSim()
		s.Verbose = true
		s.SetRange(simulatedObstacles)
		return simRealTime{s}, nil
	}
	var alarm hardware.Alarm
	if cfg.Hardware.Buzzer.Enabled {
		b, err := sound.NewBuzzer(cfg.Hardware.Buzzer.ToneHz)
		if err != nil {
			fmt.Println("Running without buzzer:", err)
		} else {
			alarm = b
		}
	}
	return hardware.New(cfg.Hardware, alarm)
}

// simulatedObstacles repeats every two minutes: an obstacle that clears after
// 2s, then a minute later one that stays long enough to force a reroute.
func simulatedObstacles(p pose.Pose, elapsed time.Duration) uint8 {
	far := gp2d12.CodeFor(gp2d12.MaxDistanceMM)
	near := gp2d12.CodeFor(150)
	t := elapsed % (2 * time.Minute)
	switch {
	case t >= 30*time.Second && t < 32*time.Second:
		return near
	case t >= 90*time.Second && t < 100*time.Second:
		return near
	}
	return far
}

// simRealTime paces the simulator against the wall clock so its output can
// be watched.
type simRealTime struct {
	*hardware.Sim
}

func (s simRealTime) Sleep(d time.Duration) {
	s.Sim.Sleep(d)
	time.Sleep(d)
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}

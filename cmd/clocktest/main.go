package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go-omen/midi"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "listen":
		if len(os.Args) < 3 {
			usage()
			return
		}
		listen(os.Args[2])
	case "send":
		if len(os.Args) < 3 {
			usage()
			return
		}
		bpm := 120.0
		if len(os.Args) > 3 {
			v, err := strconv.ParseFloat(os.Args[3], 64)
			if err != nil || v <= 0 {
				fmt.Printf("bad tempo %q\n", os.Args[3])
				os.Exit(1)
			}
			bpm = v
		}
		sendClock(os.Args[2], bpm)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI clock diagnostics")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List all MIDI ports")
	fmt.Println("  listen <port>        - Print tempo and transport from a clock source")
	fmt.Println("  send <port> [bpm]    - Send start and 24 PPQN clock to a port")
	fmt.Println("  poll                 - Poll for device changes")
}

type ports struct {
	ins  []drivers.In
	outs []drivers.Out
}

// getPorts lists ports with a timeout because CoreMIDI can hang.
func getPorts() (ports, bool) {
	ch := make(chan ports, 1)
	go func() {
		ch <- ports{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()
	select {
	case r := <-ch:
		return r, true
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return ports{}, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")
	r, ok := getPorts()
	if !ok {
		return
	}
	for i, p := range r.ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range r.outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

// counter stands in for the rack and just counts what arrives.
type counter struct {
	clocks, resets atomic.Int64
}

func (c *counter) Clock() bool {
	c.clocks.Add(1)
	return true
}

func (c *counter) Reset() bool {
	c.resets.Add(1)
	return true
}

func (c *counter) Press(int) bool  { return true }
func (c *counter) Randomize() bool { return true }

func listen(name string) {
	r, ok := getPorts()
	if !ok {
		return
	}
	var in drivers.In
	for _, p := range r.ins {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			in = p
			break
		}
	}
	if in == nil {
		fmt.Printf("No input matching %q\n", name)
		return
	}

	target := &counter{}
	c, err := midi.OpenClockInput(in.String(), in, target)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer c.Close()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			fmt.Println()
			return
		case <-ticker.C:
			state := "running"
			if c.Paused() {
				state = "stopped"
			}
			fmt.Printf("[%s] %6.2f bpm  ticks=%d  resets=%d  %s\n",
				time.Now().Format("15:04:05"), c.BPM(), target.clocks.Load(), target.resets.Load(), state)
		}
	}
}

func sendClock(name string, bpm float64) {
	r, ok := getPorts()
	if !ok {
		return
	}
	var out drivers.Out
	for _, p := range r.outs {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			out = p
			break
		}
	}
	if out == nil {
		fmt.Printf("No output matching %q\n", name)
		return
	}

	send, err := gomidi.SendTo(out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Sending %.1f bpm to %s. Ctrl+C to stop.\n", bpm, out.String())
	send(gomidi.Message{midi.Start})

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ticker := time.NewTicker(time.Duration(float64(time.Minute) / (bpm * 24)))
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			send(gomidi.Message{midi.Stop})
			fmt.Println()
			return
		case <-ticker.C:
			send(gomidi.Message{midi.TimingClock})
		}
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a clock source to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		r, ok := getPorts()
		if ok {
			var inNames, outNames []string
			for _, p := range r.ins {
				inNames = append(inNames, p.String())
			}
			for _, p := range r.outs {
				outNames = append(outNames, p.String())
			}

			currentIn := strings.Join(inNames, ",")
			currentOut := strings.Join(outNames, ",")
			if currentIn != lastIn || currentOut != lastOut {
				fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
				fmt.Printf("  Inputs: %v\n", inNames)
				fmt.Printf("  Outputs: %v\n", outNames)
				lastIn = currentIn
				lastOut = currentOut
			}
		}
		time.Sleep(2 * time.Second)
	}
}

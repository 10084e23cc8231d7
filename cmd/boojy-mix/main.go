package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
	"github.com/tyrbujac/boojy-audio-sub006/api"
	"github.com/tyrbujac/boojy-audio-sub006/mixer"
	"github.com/tyrbujac/boojy-audio-sub006/oto"
	"github.com/tyrbujac/boojy-audio-sub006/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory as the first input file.")
	play := flag.Bool("p", false, "Play the mix (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered mix as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered mix as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	length := flag.Float64("d", 0, "Render length in seconds. Defaults to the end of the last clip plus a two second tail.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the mix
	}

	engine := mixer.NewEngine()
	surface := api.NewSurface(engine)

	// inputs: project files (.yml/.json) set up the tracks, wav files each
	// get an audio track of their own, placed at the timeline start
	tail := 2.0
	end := 0.0
	for _, param := range flag.Args() {
		switch strings.ToLower(filepath.Ext(param)) {
		case ".wav":
			clipID, err := surface.LoadAudioClip(param)
			if err != nil {
				log.Fatalf("could not load %v: %v", param, err)
			}
			name := strings.TrimSuffix(filepath.Base(param), filepath.Ext(param))
			trackID, err := surface.CreateTrack("audio", name)
			if err != nil {
				log.Fatalf("could not create track for %v: %v", param, err)
			}
			if _, err := surface.MoveClipToTrack(trackID, clipID); err != nil {
				log.Fatalf("could not place %v: %v", param, err)
			}
			if c, ok := engine.Clips.Audio(clipID); ok && c.Duration() > end {
				end = c.Duration()
			}
		default:
			inputBytes, err := os.ReadFile(param)
			if err != nil {
				log.Fatalf("could not read file %v: %v", param, err)
			}
			project, err := boojy.ParseProject(inputBytes)
			if err != nil {
				log.Fatalf("could not parse project %v: %v", param, err)
			}
			if err := engine.Apply(&project); err != nil {
				log.Fatalf("could not apply project %v: %v", param, err)
			}
		}
	}
	seconds := *length
	if seconds <= 0 {
		seconds = end + tail
	}
	frames := int64(seconds * float64(boojy.SampleRate))
	buffer := engine.Player.Render(frames)

	if *rawOut {
		raw, err := buffer.Raw(*pcm)
		if err != nil {
			log.Fatalf("could not generate .raw file: %v", err)
		}
		if err := output(*stdout, *directory, flag.Arg(0), ".raw", raw); err != nil {
			log.Fatalf("error outputting .raw file: %v", err)
		}
	}
	if *wavOut {
		wav, err := buffer.Wav(*pcm)
		if err != nil {
			log.Fatalf("could not generate .wav file: %v", err)
		}
		if err := output(*stdout, *directory, flag.Arg(0), ".wav", wav); err != nil {
			log.Fatalf("error outputting .wav file: %v", err)
		}
	}
	if *play {
		audioContext, err := oto.NewContext()
		if err != nil {
			log.Fatalf("could not acquire oto AudioContext: %v", err)
		}
		defer audioContext.Close()
		sink := audioContext.Output()
		defer sink.Close()
		if err := sink.WriteAudio(buffer); err != nil {
			log.Fatalf("could not play mix: %v", err)
		}
	}
}

func output(stdout bool, directory, input, extension string, contents []byte) error {
	if stdout {
		_, err := os.Stdout.Write(contents)
		return err
	}
	_, name := filepath.Split(input)
	dir := directory
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
		}
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	f := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "boojy-mix renders or plays a mix from project .yml/.json files and .wav clips.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}

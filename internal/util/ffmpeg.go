package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AudioInfo describes a recorded lecture file.
type AudioInfo struct {
	Duration   float64 `json:"duration"` // seconds
	SampleRate int     `json:"sampleRate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Size       int64   `json:"size"`
}

// ProbeAudio reads duration and stream layout of an audio file with ffprobe.
func ProbeAudio(path string) (*AudioInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	jsonOutput, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe audio: %w", err)
	}

	var result struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &AudioInfo{Size: fileInfo.Size()}
	for _, stream := range result.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		info.Codec = stream.CodecName
		info.Channels = stream.Channels
		info.SampleRate, _ = strconv.Atoi(stream.SampleRate)
		break
	}
	if info.Codec == "" {
		return nil, ErrInvalidAudio
	}

	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if s, err := strconv.ParseInt(result.Format.Size, 10, 64); err == nil {
		info.Size = s
	}

	return info, nil
}

// NormalizeAudio transcodes src into a mono 16 kHz MP3 at dst, the smallest input the
// transcription model accepts without losing speech quality.
func NormalizeAudio(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"ac":  "1",
			"ar":  "16000",
			"b:a": "48k",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
}

// GetFFmpegVersion checks that the ffmpeg binary is installed. ffmpeg-go has no
// version call, so this shells out directly.
func GetFFmpegVersion() (string, error) {
	cmd := exec.Command("ffmpeg", "-version", "-hide_banner")
	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg is not available: %v, %s", err, errOut.String())
	}

	return out.String(), nil
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// landmarkFrame is one recorded frame, in the same form the landmark websocket takes.
type landmarkFrame struct {
	Points []detector.Point3D `json:"points"`
	Score  float64            `json:"score"`
	Ts     int64              `json:"ts"`
}

type classifiedFrame struct {
	Index      int           `json:"index"`
	OffsetMS   int64         `json:"offset_ms"`
	Label      gesture.Label `json:"label"`
	Confidence float64       `json:"confidence"`
	HandOpen   bool          `json:"hand_open"`
	Pointing   bool          `json:"pointing"`
	Fired      bool          `json:"fired"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "classify <landmarks.json|->",
		Short: "Classify recorded landmark frames and show which gestures would fire",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			frames, err := decodeFrames(data)
			if err != nil {
				return err
			}

			classifier := gesture.NewClassifier(gesture.DefaultConfidences(), gesture.DefaultThresholds())
			stabilizer := gesture.NewStabilizer(cfg.StabilizerConfig())
			results := classifyFrames(classifier, stabilizer, frames, interval)

			if asJSON {
				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				label := string(r.Label)
				if label == "" {
					label = "-"
				}
				rows = append(rows, []string{
					strconv.Itoa(r.Index),
					strconv.FormatInt(r.OffsetMS, 10),
					label,
					strconv.FormatFloat(r.Confidence, 'f', 2, 64),
					yesNo(r.HandOpen),
					yesNo(r.Pointing),
					yesNo(r.Fired),
				})
			}
			headers := []string{"#", "ms", "Label", "Conf", "Open", "Pointing", "Fired"}
			aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "Frame spacing for frames without timestamps")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read landmarks: %w", err)
	}
	return data, nil
}

// decodeFrames accepts a single frame object or an array of them.
func decodeFrames(data []byte) ([]landmarkFrame, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode landmarks: empty input")
	}
	if data[0] == '{' {
		var f landmarkFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode landmarks: %w", err)
		}
		return []landmarkFrame{f}, nil
	}
	var frames []landmarkFrame
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("decode landmarks: %w", err)
	}
	return frames, nil
}

func classifyFrames(c *gesture.Classifier, s *gesture.Stabilizer, frames []landmarkFrame, interval time.Duration) []classifiedFrame {
	var base time.Time
	results := make([]classifiedFrame, 0, len(frames))
	for i, f := range frames {
		at := time.Unix(0, 0).Add(time.Duration(i) * interval)
		if f.Ts > 0 {
			at = time.UnixMilli(f.Ts)
		}
		if i == 0 {
			base = at
		}

		r := classifiedFrame{Index: i, OffsetMS: at.Sub(base).Milliseconds()}
		if len(f.Points) >= detector.NumLandmarks {
			a := c.Classify(f.Points).Capped(f.Score)
			r.Label = a.Label
			r.Confidence = a.Confidence
			r.HandOpen = c.IsHandOpen(f.Points)
			r.Pointing = c.IsPointing(f.Points)
			_, r.Fired = s.Observe(a, at)
		} else {
			s.Observe(gesture.Analysis{}, at)
		}
		results = append(results, r)
	}
	return results
}

package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// TestSpinnerStartStop tests basic spinner lifecycle and goroutine cleanup
func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message:  "Converting",
		NoColor:  true,
		Interval: 50 * time.Millisecond,
	})

	spinner.Start()

	// Let it animate for a bit
	time.Sleep(150 * time.Millisecond)

	spinner.Stop()

	if !strings.Contains(buf.String(), "Converting") {
		t.Errorf("Expected spinner to show message 'Converting', got: %s", buf.String())
	}

	// Verify clearing sequence was written
	if !strings.Contains(buf.String(), "\r\033[K") {
		t.Error("Expected spinner to clear the line on stop")
	}
}

// TestSpinnerSuccess tests the Success method
func TestSpinnerSuccess(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message: "Converting",
		NoColor: true,
	})

	spinner.Start()
	time.Sleep(50 * time.Millisecond)
	spinner.Success("Wrote scene.cbor")

	output := buf.String()

	if !strings.Contains(output, "✓") {
		t.Error("Expected success symbol ✓")
	}
	if !strings.Contains(output, "Wrote scene.cbor") {
		t.Errorf("Expected success message, got: %s", output)
	}
}

// TestSpinnerError tests the Error method
func TestSpinnerError(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message: "Converting",
		NoColor: true,
	})

	spinner.Start()
	time.Sleep(50 * time.Millisecond)
	spinner.Error("Conversion failed")

	output := buf.String()

	if !strings.Contains(output, "❌") {
		t.Error("Expected error symbol ❌")
	}
	if !strings.Contains(output, "Conversion failed") {
		t.Errorf("Expected error message, got: %s", output)
	}
}

// TestSpinnerNoColor verifies NoColor flag disables colors
func TestSpinnerNoColor(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message: "Testing",
		NoColor: true,
	})

	spinner.Start()
	time.Sleep(100 * time.Millisecond)
	spinner.Stop()

	output := buf.String()

	// With NoColor=true, there should be no ANSI color codes (except clear sequence)
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		// Skip the clear line sequence which is expected
		if line == "\r\033[K" || line == "" {
			continue
		}
		// Check for color codes (like \x1b[36m for cyan)
		if strings.Contains(line, "\x1b[3") && !strings.Contains(line, "\x1b[K") {
			t.Errorf("Expected no color codes with NoColor=true, but found them in: %q", line)
		}
	}
}

// TestSpinnerUpdateMessage tests changing the spinner message
func TestSpinnerUpdateMessage(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message: "Initial message",
		NoColor: true,
	})

	spinner.Start()
	time.Sleep(50 * time.Millisecond)

	spinner.UpdateMessage("Updated message")
	time.Sleep(50 * time.Millisecond)

	spinner.Stop()

	output := buf.String()

	if !strings.Contains(output, "Updated message") {
		t.Errorf("Expected updated message in output, got: %s", output)
	}
}

// TestSpinnerDoubleStop verifies a second Stop is a no-op
func TestSpinnerDoubleStop(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message: "Testing",
		NoColor: true,
	})

	spinner.Start()
	time.Sleep(50 * time.Millisecond)
	spinner.Stop()
	spinner.Stop()
}

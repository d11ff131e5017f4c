package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CommandDevice captures from an external program that writes an MJPEG
// stream to stdout, such as ffmpeg reading a v4l2 device.
type CommandDevice struct {
	Args []string
}

// ParseCommand splits a command line on whitespace
func ParseCommand(cmdline string) CommandDevice {
	return CommandDevice{Args: strings.Fields(cmdline)}
}

func (d CommandDevice) Open(ctx context.Context) (Stream, error) {
	if len(d.Args) == 0 {
		return nil, errors.New("no capture command configured")
	}
	if _, err := exec.LookPath(d.Args[0]); err != nil {
		return nil, fmt.Errorf("capture command %q: %w", d.Args[0], err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Not CommandContext: the process lives until its track is stopped,
	// not until the opening context ends.
	cmd := exec.Command(d.Args[0], d.Args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting capture command: %w", err)
	}

	return &processStream{
		track:  &processTrack{cmd: cmd},
		reader: bufio.NewReader(stdout),
	}, nil
}

type processTrack struct {
	cmd  *exec.Cmd
	once sync.Once
}

func (t *processTrack) Stop() {
	t.once.Do(func() {
		if t.cmd.Process != nil {
			_ = t.cmd.Process.Kill()
		}
		_ = t.cmd.Wait()
	})
}

type processStream struct {
	track  *processTrack
	reader *bufio.Reader
	mu     sync.Mutex
}

func (s *processStream) Tracks() []Track {
	return []Track{s.track}
}

func (s *processStream) Frame(ctx context.Context) (image.Image, error) {
	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		data, err := readJPEGFrame(s.reader)
		if err != nil {
			ch <- result{err: err}
			return
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		ch <- result{img: img, err: err}
	}()

	select {
	case r := <-ch:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readJPEGFrame returns the next SOI..EOI delimited frame. Header segments
// are skipped by their length fields since their payloads (tables, EXIF
// thumbnails) may contain 0xFFD9. Only entropy coded data, where 0xFF is
// byte-stuffed, is scanned for markers.
func readJPEGFrame(r io.ByteReader) ([]byte, error) {
	var buf bytes.Buffer
	next := func() (byte, error) {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return 0, io.ErrUnexpectedEOF
		}
		if err == nil {
			buf.WriteByte(b)
		}
		return b, err
	}

	var prev byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if prev == 0xFF && b == 0xD8 {
			break
		}
		prev = b
	}
	buf.Write([]byte{0xFF, 0xD8})

	var marker byte
	for {
		if marker == 0 {
			b, err := next()
			if err != nil {
				return nil, err
			}
			if b != 0xFF {
				return nil, fmt.Errorf("jpeg: expected marker, got 0x%02X", b)
			}
			for b == 0xFF {
				if b, err = next(); err != nil {
					return nil, err
				}
			}
			marker = b
		}

		switch {
		case marker == 0xD9:
			return buf.Bytes(), nil
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			marker = 0
			continue
		}

		hi, err := next()
		if err != nil {
			return nil, err
		}
		lo, err := next()
		if err != nil {
			return nil, err
		}
		n := int(hi)<<8 | int(lo)
		if n < 2 {
			return nil, fmt.Errorf("jpeg: bad segment length %d", n)
		}
		for i := 0; i < n-2; i++ {
			if _, err := next(); err != nil {
				return nil, err
			}
		}
		if marker != 0xDA {
			marker = 0
			continue
		}

		// Entropy coded data runs until a marker that is neither a stuffed
		// zero nor a restart.
		marker = 0
		for marker == 0 {
			b, err := next()
			if err != nil {
				return nil, err
			}
			if b != 0xFF {
				continue
			}
			for b == 0xFF {
				if b, err = next(); err != nil {
					return nil, err
				}
			}
			if b != 0x00 && (b < 0xD0 || b > 0xD7) {
				marker = b
			}
		}
	}
}

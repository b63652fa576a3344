package imageio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"tracetransform/internal/models"
)

// DecodePGM reads a plain (P2) or raw (P5) portable graymap. Samples are
// divided by the maximum gray value.
func DecodePGM(r io.Reader) (*models.Image, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	magic, err := pgmToken(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read PGM magic: %w", err)
	}
	if magic != "P2" && magic != "P5" {
		return nil, fmt.Errorf("unsupported PGM magic %q", magic)
	}

	var header [3]int
	for i, name := range []string{"width", "height", "maximum gray value"} {
		tok, err := pgmToken(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read PGM %s: %w", name, err)
		}
		v, err := strconv.Atoi(tok)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid PGM %s %q", name, tok)
		}
		header[i] = v
	}
	width, height, maxVal := header[0], header[1], header[2]
	if maxVal > 65535 {
		return nil, fmt.Errorf("PGM maximum gray value %d exceeds 65535", maxVal)
	}

	img := models.NewImage(width, height)
	scale := 1 / float64(maxVal)

	if magic == "P2" {
		for i := range img.Data {
			tok, err := pgmToken(br)
			if err != nil {
				return nil, fmt.Errorf("failed to read PGM sample %d: %w", i, err)
			}
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > maxVal {
				return nil, fmt.Errorf("invalid PGM sample %q", tok)
			}
			img.Data[i] = float64(v) * scale
		}
		return img, nil
	}

	// a single whitespace byte separates the header from the raster
	if _, err := br.ReadByte(); err != nil {
		return nil, fmt.Errorf("failed to read PGM raster: %w", err)
	}
	bytesPerSample := 1
	if maxVal > 255 {
		bytesPerSample = 2
	}
	raster := make([]byte, width*height*bytesPerSample)
	if _, err := io.ReadFull(br, raster); err != nil {
		return nil, fmt.Errorf("failed to read PGM raster: %w", err)
	}
	for i := range img.Data {
		var v int
		if bytesPerSample == 1 {
			v = int(raster[i])
		} else {
			v = int(raster[2*i])<<8 | int(raster[2*i+1])
		}
		img.Data[i] = float64(min(v, maxVal)) * scale
	}
	return img, nil
}

// pgmToken returns the next whitespace separated header token, skipping
// '#' comments
func pgmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case c == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if len(tok) > 0 {
				// leave the separator for the raw raster check
				if err := br.UnreadByte(); err != nil {
					return "", err
				}
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

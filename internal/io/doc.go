// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation and existence checks
//   - Atomic file replacement
//   - Cover art resizing and format conversion
//
// # File Operations
//
//	// Write data, creating parent directories
//	err := ioutils.WriteFile(ctx, "/music/A/B/track.lrc", []byte("[00:01.00]..."))
//
//	// Replace a file atomically (temp file + rename)
//	err := ioutils.WriteFileAtomic("/home/u/.config/app/config.json", data)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	resized, _ := svc.ResizeImage(ctx, imageData, 1000, 1000)
package ioutils

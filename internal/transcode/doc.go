// Package transcode runs local ffmpeg jobs (convert, trim, merge) outside
// the download queue. Progress is derived from ffmpeg's -progress output
// against the duration reported by ffprobe.
package transcode

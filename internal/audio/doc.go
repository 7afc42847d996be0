// Package audio plays the alarm sound.
//
// Before playback starts the volume of the default output is raised over
// the PulseAudio native protocol. That step is best effort: any failure is
// logged and the clip plays anyway.
package audio

// Package devices discovers capture devices by parsing the encoder's
// device-enumeration output.
//
// Parse is a pure line scanner. Catalog runs the probe invocation and caches
// the parsed result; the daemon invalidates it on hotplug events.
package devices

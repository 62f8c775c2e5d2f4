// Package critsec implements the cross-process critical section guarding
// USB device enumeration (§4.5, Design Note 4): on POSIX it is an flock
// on a well-known lock file; on Windows it is a named mutex. Neither
// implementation has a teacher-internal equivalent — ardnew-softusb
// talks to a single device stack within one process and never needed
// cross-process serialization — so both are grounded on
// golang.org/x/sys's documented wrapping of the same raw primitives
// (flock(2), CreateMutexW) that ardnew-softusb's own hal/linux package
// reaches for raw syscalls to get at (netlink sockets, epoll, usbfs
// ioctls in hotplug.go/poller.go/usbfs.go): same register-level style,
// x/sys instead of bare syscall because it already ships the Windows
// side of this pairing that stdlib syscall does not expose portably.
package critsec

package nfsmount

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// DefaultListenAddr serves on an ephemeral loopback port.
const DefaultListenAddr = "127.0.0.1:0"

// handleCacheSize bounds the NFS file-handle cache.
const handleCacheSize = 4096

// Server serves a projection over NFSv3 until closed.
type Server struct {
	port  int
	close func() error
}

// NewServer serves fs on addr, or on DefaultListenAddr when addr is empty.
// The server is running when NewServer returns.
func NewServer(fs billy.Filesystem, addr string) (*Server, error) {
	if addr == "" {
		addr = DefaultListenAddr
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nfs listen %s: %w", addr, err)
	}
	served := make(chan struct{})
	handler := nfshelper.NewCachingHandler(nfshelper.NewNullAuthHandler(fs), handleCacheSize)
	go func() {
		defer close(served)
		_ = nfs.Serve(l, handler)
	}()
	s := &Server{port: l.Addr().(*net.TCPAddr).Port}
	s.close = sync.OnceValue(func() error {
		err := l.Close()
		<-served
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	})
	return s, nil
}

// Port returns the bound TCP port.
func (s *Server) Port() int { return s.port }

// Close stops accepting connections and waits for the serve loop to exit.
// Later calls return the first call's result.
func (s *Server) Close() error { return s.close() }

// mountArgs returns the command line that mounts the server at mountpoint
// read-only on goos.
func mountArgs(goos string, port int, mountpoint string) ([]string, error) {
	var opts []string
	switch goos {
	case "darwin":
		opts = []string{"locallocks", "noresvport", "rdonly"}
	case "linux":
		opts = []string{"local_lock=all", "nolock", "ro"}
	default:
		return nil, fmt.Errorf("mount: unsupported OS %q", goos)
	}
	opts = append([]string{
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("mountport=%d", port),
		"vers=3",
		"tcp",
	}, opts...)
	return []string{"sudo", "mount", "-t", "nfs", "-o", strings.Join(opts, ","), "localhost:/", mountpoint}, nil
}

// unmountArgs lists the commands to try, in order, to unmount mountpoint.
// On darwin a user mount can be released by diskutil without sudo.
func unmountArgs(goos, mountpoint string) [][]string {
	umount := []string{"sudo", "umount", mountpoint}
	if goos == "darwin" {
		return [][]string{{"diskutil", "unmount", mountpoint}, umount}
	}
	return [][]string{umount}
}

// Mount mounts the server's tree at mountpoint, read-only. It needs sudo.
func Mount(port int, mountpoint string) error {
	args, err := mountArgs(runtime.GOOS, port, mountpoint)
	if err != nil {
		return err
	}
	return run("mount", args)
}

// Unmount releases mountpoint, reporting the last attempt's failure.
func Unmount(mountpoint string) error {
	var err error
	for _, args := range unmountArgs(runtime.GOOS, mountpoint) {
		if err = run("unmount", args); err == nil {
			return nil
		}
	}
	return err
}

func run(op string, args []string) error {
	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w\n%s", op, args[len(args)-1], err, out)
	}
	return nil
}

package mirror

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"assetshrink/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// UploadToSFTPWithCreds uploads content from an io.Reader to
// remoteDir/folder/filename on a remote server via SFTP.
// accessInfo needs host, user, remoteDir and one of password or
// privateKey (base64 or raw PEM); port defaults to 22.
func UploadToSFTPWithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	host := accessInfo["host"]
	port := accessInfo["port"]
	if port == "" {
		port = "22"
	}
	user := accessInfo["user"]
	remoteDir := accessInfo["remoteDir"]

	if host == "" || user == "" || remoteDir == "" {
		return fmt.Errorf("missing required accessInfo keys: host, user, remoteDir")
	}

	auths, err := sftpAuth(accessInfo)
	if err != nil {
		return err
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(host, port)

	// Dial respecting context
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial tcp %s: %w", addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("create sftp client: %w", err)
	}
	defer sftpClient.Close()

	remotePath := path.Join(remoteDir, objectKey(accessInfo))
	dir := path.Dir(remotePath)
	if err := mkdirAllSFTP(sftpClient, dir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", dir, err)
	}

	f, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	if err := copyAndClose(f, reader, remotePath); err != nil {
		return err
	}

	logger.Debugf("uploaded '%s' to %s", remotePath, addr)
	return nil
}

// sftpAuth prefers a private key over a password.
func sftpAuth(accessInfo map[string]string) ([]ssh.AuthMethod, error) {
	if privateKey := accessInfo["privateKey"]; privateKey != "" {
		signer, err := ssh.ParsePrivateKey(decodeMaybeBase64(privateKey))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	if password := accessInfo["password"]; password != "" {
		return []ssh.AuthMethod{ssh.Password(password)}, nil
	}
	return nil, fmt.Errorf("no auth method provided; set password or privateKey in accessInfo")
}

// mkdirAllSFTP mimics os.MkdirAll for an SFTP server by creating each segment of the path.
func mkdirAllSFTP(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}
	for _, p := range strings.Split(dir, "/") {
		if p == "" {
			continue
		}
		cur = path.Join(cur, p)
		if _, err := client.Stat(cur); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("stat %s: %w", cur, err)
			}
			if err := client.Mkdir(cur); err != nil {
				return fmt.Errorf("mkdir %s: %w", cur, err)
			}
		}
	}
	return nil
}

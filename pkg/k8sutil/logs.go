package k8sutil

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// releaseInstanceLabel is the conventional label helm charts put on the
// workloads they template.
const releaseInstanceLabel = "app.kubernetes.io/instance"

// ListReleasePods returns the pods labeled as belonging to a helm release.
func ListReleasePods(ctx context.Context, clientset kubernetes.Interface, namespace, releaseName string) ([]corev1.Pod, error) {
	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("%s=%s", releaseInstanceLabel, releaseName),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list pods for release %s", releaseName)
	}
	return pods.Items, nil
}

// StreamPodLogs copies one pod container's log stream to w until the
// stream ends or ctx is canceled. With follow set the stream stays open as
// new log lines arrive.
func StreamPodLogs(ctx context.Context, clientset kubernetes.Interface, namespace, podName, container string, follow bool, tailLines int64, w io.Writer) error {
	opts := &corev1.PodLogOptions{
		Follow: follow,
	}
	if container != "" {
		opts.Container = container
	}
	if tailLines > 0 {
		opts.TailLines = &tailLines
	}

	req := clientset.CoreV1().Pods(namespace).GetLogs(podName, opts)
	stream, err := req.Stream(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to open log stream for pod %s", podName)
	}
	defer stream.Close()

	if _, err := io.Copy(flushWriter{w}, stream); err != nil && ctx.Err() == nil {
		return errors.Wrapf(err, "failed to copy log stream for pod %s", podName)
	}
	return nil
}

// flushWriter flushes after every write so followed logs reach the client
// promptly instead of sitting in the response buffer.
type flushWriter struct {
	w io.Writer
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if f, ok := fw.w.(interface{ Flush() }); ok {
		f.Flush()
	}
	return n, err
}

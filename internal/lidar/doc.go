// Package lidar holds the shared types of the synthetic LiDAR
// reconstruction pipeline: sensor metadata, reconstructed points and
// clouds, object classifiers, the error taxonomy, and the frame store
// that hands rendered sensor frames over from the render collaborator.
//
// The pipeline stages live in sub-packages:
//
//	rawcodec    - encoded pixel buffer codec (wire format)
//	scanpattern - deterministic beam pattern generation
//	projection  - beam angle to image index mapping
//	sensormodel - attenuation and stochastic dropoff model
//	pipeline    - the reconstruction pass tying the stages together
//	storage/sqlite - run persistence
//	monitor     - HTTP serving surface
package lidar

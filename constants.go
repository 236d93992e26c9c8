package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeHelp
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmRemoveClusters
)

// Graph geometry (world units).
const (
	clusterBaseRadius = 18.0
	clusterGrowRadius = 3.0 // added per center item
	clusterMaxRadius  = 42.0
	centerRadius      = 5.0
	memberRadius      = 8.0
	centerRingFactor  = 0.7 // center ring distance as a fraction of cluster radius
)

// Simulation tuning.
const (
	repulsionStrength = 1800.0
	repulsionCrowdCap = 200 // free-body count past which repulsion is halved
	springStrength    = 0.08
	centerGravity     = 0.012
	velocityDamping   = 0.82
	restLenMin        = 40.0
	restLenMax        = 400.0
	restLenExponent   = 2.5
	energyInitial     = 1.0
	energyMin         = 0.005
	energyDecay       = 0.06
	energyReheat      = 0.5
	stabilizeMaxSteps = 100
)

// Viewport and interaction.
const (
	zoomMin       = 0.1
	zoomMax       = 10.0
	zoomStep      = 1.15
	lodExpandZoom = 3.0 // center nodes pickable/drawn past this scale
	fitPadding    = 0.1
	dragThreshold = 5.0 // screen cells of travel before a press becomes a drag
	panKeySpeed   = 4.0
	fadedAlpha    = 0.08
	alphaApproach = 0.15
)

// Threshold slider.
const (
	thresholdStep     = 0.05
	thresholdDebounce = 100 // milliseconds
)

const defaultFPS = 30
